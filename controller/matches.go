package controller

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ETTyler/football/model"
	"github.com/rs/zerolog/log"
)

const (
	MinTitleLength   = 3
	MinPlayers       = 2
	MaxPlayers       = 22
	MaxInviteMessage = 500
)

func (c *controller) CreateMatch(ctx context.Context, organizerID string, input model.MatchInput, inviteeIDs []string, message string) (*model.CreatedMatch, error) {
	m, err := matchFromInput(input)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(message) > MaxInviteMessage {
		return nil, fmt.Errorf("%w: invitation message must be at most %d characters", ErrInvalidInput, MaxInviteMessage)
	}

	organizer, err := c.db.GetUser(ctx, organizerID)
	if err != nil {
		return nil, err
	}

	m.OrganizerID = organizerID
	if err := c.db.CreateMatch(ctx, m); err != nil {
		return nil, err
	}
	m.Organizer = organizer
	log.Info().Str("match", m.ID).Str("organizer", organizerID).Msg("match created")

	// Failing invitations do not undo the match.
	invites := c.sendInvitations(ctx, m, organizer, inviteeIDs, message)
	return &model.CreatedMatch{Match: m, Invites: *invites}, nil
}

func (c *controller) UpdateMatch(ctx context.Context, userID, matchID string, input model.MatchInput) (*model.Match, error) {
	existing, err := c.db.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if existing.OrganizerID != userID {
		return nil, ErrNotOrganizer
	}

	m, err := matchFromInput(input)
	if err != nil {
		return nil, err
	}
	if m.MaxPlayers < existing.CurrentPlayers {
		return nil, fmt.Errorf("%w: cannot reduce max players below current player count (%d)", ErrInvalidInput, existing.CurrentPlayers)
	}

	m.ID = existing.ID
	m.OrganizerID = existing.OrganizerID
	m.Organizer = existing.Organizer
	m.CurrentPlayers = existing.CurrentPlayers
	m.Created = existing.Created
	if err := c.db.UpdateMatch(ctx, m); err != nil {
		return nil, err
	}

	participants, err := c.db.ListParticipants(ctx, matchID)
	if err != nil {
		log.Warn().Err(err).Str("match", matchID).Msg("error listing participants to notify of update")
		return m, nil
	}
	for _, p := range participants {
		if p.UserID == userID {
			continue
		}
		c.notify(ctx, &model.Notification{
			UserID:         p.UserID,
			Type:           model.NOTIFY_MATCH_UPDATE,
			Title:          "Match Updated",
			Message:        fmt.Sprintf("%s on %s at %s has been updated by the organizer", m.Title, m.Date, m.Time),
			RelatedMatchID: m.ID,
		})
	}
	return m, nil
}

func (c *controller) DeleteMatch(ctx context.Context, userID, matchID string) error {
	m, err := c.db.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if m.OrganizerID != userID {
		return ErrNotOrganizer
	}
	if err := c.db.DeleteMatch(ctx, matchID); err != nil {
		return err
	}
	log.Info().Str("match", matchID).Msg("match deleted")
	return nil
}

func (c *controller) GetMatch(ctx context.Context, matchID string) (*model.Match, error) {
	return c.db.GetMatch(ctx, matchID)
}

// ListMatches resolves the date filter against the current day and runs the
// search. Bounds already present on the filter are replaced.
func (c *controller) ListMatches(ctx context.Context, filter model.MatchFilter) ([]model.Match, error) {
	today := c.today()
	filter.From, filter.To = "", ""
	switch filter.Dates {
	case model.DATES_UPCOMING:
		filter.From = today.Format(model.DateFormat)
	case model.DATES_TODAY:
		filter.From = today.Format(model.DateFormat)
		filter.To = filter.From
	case model.DATES_THIS_WEEK:
		filter.From = today.Format(model.DateFormat)
		filter.To = today.AddDate(0, 0, 7).Format(model.DateFormat)
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return c.db.ListMatches(ctx, filter)
}

func (c *controller) Dashboard(ctx context.Context, userID string) (*model.Dashboard, error) {
	organized, err := c.db.ListOrganizedMatches(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading organized matches: %w", err)
	}
	joined, err := c.db.ListJoinedMatches(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading joined matches: %w", err)
	}
	return &model.Dashboard{Organized: organized, Joined: joined}, nil
}

func matchFromInput(input model.MatchInput) (*model.Match, error) {
	m := &model.Match{
		Title:      strings.TrimSpace(input.Title),
		Date:       strings.TrimSpace(input.Date),
		Time:       model.FormatTime(strings.TrimSpace(input.Time)),
		Location:   strings.TrimSpace(input.Location),
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		PitchType:  model.ParsePitchType(string(input.PitchType)),
		Pricing:    input.Pricing,
		MaxPlayers: input.MaxPlayers,
		Notes:      strings.TrimSpace(input.Notes),
	}

	switch {
	case utf8.RuneCountInString(m.Title) < MinTitleLength:
		return nil, fmt.Errorf("%w: title must be at least %d characters", ErrInvalidInput, MinTitleLength)
	case m.Date == "":
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	case m.Time == "":
		return nil, fmt.Errorf("%w: time is required", ErrInvalidInput)
	case m.Location == "":
		return nil, fmt.Errorf("%w: location is required", ErrInvalidInput)
	case !model.ValidCoordinates(m.Latitude, m.Longitude):
		return nil, fmt.Errorf("%w: coordinates are out of range", ErrInvalidInput)
	case m.PitchType == model.PITCH_UNKNOWN:
		return nil, fmt.Errorf("%w: pitch type must be one of 5-a-side, 6-a-side, 7-a-side or 11-a-side", ErrInvalidInput)
	case m.MaxPlayers < MinPlayers || m.MaxPlayers > MaxPlayers:
		return nil, fmt.Errorf("%w: max players must be between %d and %d", ErrInvalidInput, MinPlayers, MaxPlayers)
	case m.Pricing < 0:
		return nil, fmt.Errorf("%w: pricing must be 0 or positive", ErrInvalidInput)
	}

	if _, err := time.Parse(model.DateFormat, m.Date); err != nil {
		return nil, fmt.Errorf("%w: date must be in the YYYY-MM-DD format", ErrInvalidInput)
	}
	if _, err := time.Parse(model.TimeFormat, m.Time); err != nil {
		return nil, fmt.Errorf("%w: time must be in the HH:MM format", ErrInvalidInput)
	}
	return m, nil
}
