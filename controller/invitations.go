package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ETTyler/football/db"
	"github.com/ETTyler/football/model"
	"github.com/rs/zerolog/log"
)

func (c *controller) InviteUsers(ctx context.Context, organizerID, matchID string, inviteeIDs []string, message string) (*model.InviteResult, error) {
	m, err := c.db.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.OrganizerID != organizerID {
		return nil, ErrNotOrganizer
	}
	if m.IsPast(c.now()) {
		return nil, ErrMatchInPast
	}
	if utf8.RuneCountInString(message) > MaxInviteMessage {
		return nil, fmt.Errorf("%w: invitation message must be at most %d characters", ErrInvalidInput, MaxInviteMessage)
	}

	organizer, err := c.db.GetUser(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	return c.sendInvitations(ctx, m, organizer, inviteeIDs, message), nil
}

// sendInvitations invites each user independently and reports the ones that
// could not be invited.
func (c *controller) sendInvitations(ctx context.Context, m *model.Match, organizer *model.User, inviteeIDs []string, message string) *model.InviteResult {
	result := &model.InviteResult{
		Invited: []model.Invitation{},
		Failed:  []model.InviteFailure{},
	}
	if len(inviteeIDs) == 0 {
		return result
	}

	message = strings.TrimSpace(message)
	if message == "" {
		message = model.DefaultInviteMessage
	}

	// Without the skip list a participant could be invited, so nobody is.
	skip, skipErr := c.inviteSkipList(ctx, m.ID)
	if skipErr != nil {
		log.Warn().Err(skipErr).Str("match", m.ID).Msg("error reading participants before inviting")
	}
	skip[organizer.ID] = "cannot invite yourself"

	seen := make(map[string]bool, len(inviteeIDs))
	for _, id := range inviteeIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		if skipErr != nil {
			result.Failed = append(result.Failed, model.InviteFailure{UserID: id, Reason: inviteFailureReason(skipErr)})
			continue
		}
		if reason, found := skip[id]; found {
			result.Failed = append(result.Failed, model.InviteFailure{UserID: id, Reason: reason})
			continue
		}

		inv, err := c.invite(ctx, m, organizer, id, message)
		if err != nil {
			result.Failed = append(result.Failed, model.InviteFailure{UserID: id, Reason: inviteFailureReason(err)})
			continue
		}
		result.Invited = append(result.Invited, *inv)
	}

	if result.HasFailures() {
		log.Warn().Str("match", m.ID).Int("failed", len(result.Failed)).Msg("some invitations were not sent")
	}
	return result
}

// inviteSkipList maps the users who cannot be invited to the reason why.
func (c *controller) inviteSkipList(ctx context.Context, matchID string) (map[string]string, error) {
	skip := make(map[string]string)

	participants, err := c.db.ListParticipants(ctx, matchID)
	if err != nil {
		return skip, fmt.Errorf("error listing participants: %w", err)
	}
	for _, p := range participants {
		skip[p.UserID] = "already joined this match"
	}

	pending, err := c.db.ListPendingInviteeIDs(ctx, matchID)
	if err != nil {
		return skip, fmt.Errorf("error listing pending invitees: %w", err)
	}
	for _, id := range pending {
		skip[id] = "already invited"
	}
	return skip, nil
}

func (c *controller) invite(ctx context.Context, m *model.Match, organizer *model.User, inviteeID, message string) (*model.Invitation, error) {
	invitee, err := c.db.GetUser(ctx, inviteeID)
	if err != nil {
		return nil, err
	}

	inv := &model.Invitation{
		MatchID:   m.ID,
		InviterID: organizer.ID,
		InviteeID: invitee.ID,
		Status:    model.INVITATION_PENDING,
		Message:   message,
	}
	if err := c.db.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}
	inviter := organizer.SearchResult()
	inv.Inviter = &inviter
	target := invitee.SearchResult()
	inv.Invitee = &target

	c.notify(ctx, &model.Notification{
		UserID:              invitee.ID,
		Type:                model.NOTIFY_MATCH_INVITATION,
		Title:               "Match Invitation",
		Message:             fmt.Sprintf("%s invited you to %s on %s", displayName(organizer.FullName), m.Title, m.Date),
		RelatedMatchID:      m.ID,
		RelatedInvitationID: inv.ID,
	})
	return inv, nil
}

func inviteFailureReason(err error) string {
	switch {
	case errors.Is(err, db.ErrUserNotFound):
		return "user not found"
	case errors.Is(err, db.ErrDuplicateInvitation):
		return "already invited"
	default:
		return "failed to send invitation"
	}
}

func (c *controller) RespondToInvitation(ctx context.Context, userID, invitationID string, status model.InvitationStatus) (*model.Invitation, error) {
	if status != model.INVITATION_ACCEPTED && status != model.INVITATION_DECLINED {
		return nil, fmt.Errorf("%w: response must be accepted or declined", ErrInvalidInput)
	}

	inv, err := c.db.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.InviteeID != userID {
		return nil, ErrNotInvitee
	}
	if inv.Status != model.INVITATION_PENDING {
		return nil, db.ErrInvitationNotPending
	}

	m, err := c.db.GetMatch(ctx, inv.MatchID)
	if err != nil {
		return nil, err
	}

	nType := model.NOTIFY_INVITATION_DECLINED
	title, verb := "Invitation Declined", "declined"
	if status == model.INVITATION_ACCEPTED {
		if m.IsPast(c.now()) {
			return nil, ErrMatchInPast
		}
		// Accepting joins the match. A full match leaves the invitation pending.
		if _, err := c.db.AcceptInvitation(ctx, invitationID); err != nil {
			return nil, err
		}
		nType = model.NOTIFY_INVITATION_ACCEPTED
		title, verb = "Invitation Accepted", "accepted"
	} else if err := c.db.DeclineInvitation(ctx, invitationID); err != nil {
		return nil, err
	}
	inv.Status = status
	inv.Updated = c.clock.Now()
	inv.Match = m

	name := ""
	if invitee, err := c.db.GetUser(ctx, userID); err == nil {
		name = invitee.FullName
	}
	c.notify(ctx, &model.Notification{
		UserID:              inv.InviterID,
		Type:                nType,
		Title:               title,
		Message:             fmt.Sprintf("%s %s your invitation to %s", displayName(name), verb, m.Title),
		RelatedMatchID:      m.ID,
		RelatedInvitationID: inv.ID,
	})
	return inv, nil
}

func (c *controller) ListInvitations(ctx context.Context, userID string) ([]model.Invitation, error) {
	return c.db.ListInvitations(ctx, userID)
}

func (c *controller) SearchInvitees(ctx context.Context, organizerID, matchID, query string) (model.UserBuckets, error) {
	m, err := c.db.GetMatch(ctx, matchID)
	if err != nil {
		return model.EmptyBuckets(), err
	}
	if m.OrganizerID != organizerID {
		return model.EmptyBuckets(), ErrNotOrganizer
	}

	exclude := []string{organizerID}
	participants, err := c.db.ListParticipants(ctx, matchID)
	if err != nil {
		return model.EmptyBuckets(), err
	}
	for _, p := range participants {
		exclude = append(exclude, p.UserID)
	}
	pending, err := c.db.ListPendingInviteeIDs(ctx, matchID)
	if err != nil {
		return model.EmptyBuckets(), err
	}
	exclude = append(exclude, pending...)

	return c.SearchUsersWithAvailability(ctx, query, m.Date, exclude), nil
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return AnonymousPlayer
	}
	return name
}
