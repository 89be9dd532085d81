package controller

import (
	"context"

	"github.com/ETTyler/football/db"
	"github.com/ETTyler/football/model"
	"github.com/rs/zerolog/log"
)

const AnonymousPlayer = "Anonymous Player"

func (c *controller) JoinMatch(ctx context.Context, userID, matchID string) (int, error) {
	m, err := c.db.GetMatch(ctx, matchID)
	if err != nil {
		return 0, err
	}
	if m.IsPast(c.now()) {
		return m.CurrentPlayers, ErrMatchInPast
	}
	if m.IsFull() {
		return m.CurrentPlayers, db.ErrMatchFull
	}

	count, err := c.db.AddParticipant(ctx, matchID, userID)
	if err != nil {
		return count, err
	}
	log.Info().Str("match", matchID).Str("user", userID).Int("players", count).Msg("player joined match")
	return count, nil
}

func (c *controller) LeaveMatch(ctx context.Context, userID, matchID string) (int, error) {
	m, err := c.db.GetMatch(ctx, matchID)
	if err != nil {
		return 0, err
	}
	if m.OrganizerID == userID {
		return m.CurrentPlayers, ErrOrganizerCannotLeave
	}

	count, err := c.db.RemoveParticipant(ctx, matchID, userID)
	if err != nil {
		return m.CurrentPlayers, err
	}
	log.Info().Str("match", matchID).Str("user", userID).Int("players", count).Msg("player left match")
	return count, nil
}

func (c *controller) ListParticipants(ctx context.Context, matchID string) ([]model.Participant, error) {
	if _, err := c.db.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}

	participants, err := c.db.ListParticipants(ctx, matchID)
	if err != nil {
		return nil, err
	}
	for i := range participants {
		if participants[i].FullName == "" {
			participants[i].FullName = AnonymousPlayer
		}
	}
	return participants, nil
}
