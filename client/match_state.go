package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

const (
	JoinFailed  = "Failed to join match"
	LeaveFailed = "Failed to leave match"
)

// Participator sends join and leave requests. *Client implements it.
type Participator interface {
	JoinMatch(ctx context.Context, matchID string) (*Participation, error)
	LeaveMatch(ctx context.Context, matchID string) (*Participation, error)
}

// MatchState is the signed in user's view of one match: whether they have
// joined and how many players it has. Join and Leave update the view before
// the server answers and undo the change if the server refuses it.
type MatchState struct {
	api     Participator
	matchID string

	// Held for the whole of a transition so transitions never interleave.
	opMu sync.Mutex

	mu     sync.RWMutex
	joined bool
	count  int
}

func NewMatchState(api Participator, matchID string, joined bool, count int) *MatchState {
	if count < 0 {
		count = 0
	}
	return &MatchState{api: api, matchID: matchID, joined: joined, count: count}
}

// Snapshot returns the current view, including a transition still in flight.
func (s *MatchState) Snapshot() (joined bool, count int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.joined, s.count
}

func (s *MatchState) Join(ctx context.Context) error {
	return s.transition(ctx, true)
}

func (s *MatchState) Leave(ctx context.Context) error {
	return s.transition(ctx, false)
}

func (s *MatchState) transition(ctx context.Context, join bool) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	prevCount, changed := s.apply(join)
	if !changed {
		return nil
	}

	var (
		res *Participation
		err error
		msg string
	)
	if join {
		res, err = s.api.JoinMatch(ctx, s.matchID)
		msg = JoinFailed
	} else {
		res, err = s.api.LeaveMatch(ctx, s.matchID)
		msg = LeaveFailed
	}

	if err != nil {
		s.restore(!join, prevCount)
		return failure(msg, err)
	}

	if res != nil && res.CurrentPlayers != nil {
		s.mu.Lock()
		s.count = *res.CurrentPlayers
		s.mu.Unlock()
	}
	return nil
}

// apply moves the view to joined and reports whether anything changed,
// along with the count it replaced.
func (s *MatchState) apply(joined bool) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.count
	if s.joined == joined {
		return prev, false
	}
	s.joined = joined
	if joined {
		s.count++
	} else if s.count > 0 {
		s.count--
	}
	return prev, true
}

// restore puts back the view that apply replaced.
func (s *MatchState) restore(joined bool, count int) {
	s.mu.Lock()
	s.joined = joined
	s.count = count
	s.mu.Unlock()
}

// failure prefixes err with msg unless the API message already carries it.
func failure(msg string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.HasPrefix(apiErr.Message, msg) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
