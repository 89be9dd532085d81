package model

import (
	"strings"
	"time"
)

type InvitationStatus string

const (
	INVITATION_PENDING  InvitationStatus = "pending"
	INVITATION_ACCEPTED InvitationStatus = "accepted"
	INVITATION_DECLINED InvitationStatus = "declined"
)

const DefaultInviteMessage = "You have been invited to join this football match!"

func ParseInvitationStatus(s string) (InvitationStatus, bool) {
	switch InvitationStatus(strings.ToLower(strings.TrimSpace(s))) {
	case INVITATION_PENDING:
		return INVITATION_PENDING, true
	case INVITATION_ACCEPTED:
		return INVITATION_ACCEPTED, true
	case INVITATION_DECLINED:
		return INVITATION_DECLINED, true
	default:
		return "", false
	}
}

type Invitation struct {
	ID        string           `json:"id"`
	MatchID   string           `json:"match_id"`
	InviterID string           `json:"inviter_id"`
	InviteeID string           `json:"invitee_id"`
	Status    InvitationStatus `json:"status"`
	Message   string           `json:"message,omitempty"`
	Created   time.Time        `json:"created_at"`
	Updated   time.Time        `json:"updated_at"`

	// Populated on reads that join the related rows.
	Match   *Match            `json:"match,omitempty"`
	Inviter *UserSearchResult `json:"inviter,omitempty"`
	Invitee *UserSearchResult `json:"invitee,omitempty"`
}

type InviteFailure struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// InviteResult reports each invitee separately so that one bad invitee does
// not stop the others from being invited.
type InviteResult struct {
	Invited []Invitation    `json:"invited"`
	Failed  []InviteFailure `json:"failed"`
}

func (r *InviteResult) HasFailures() bool {
	return len(r.Failed) > 0
}

type CreatedMatch struct {
	Match   *Match       `json:"match"`
	Invites InviteResult `json:"invites"`
}
