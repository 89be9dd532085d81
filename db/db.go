package db

import (
	"context"
	"time"

	"github.com/ETTyler/football/model"
)

type DB interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByOAuthSubject(ctx context.Context, subject string) (*model.User, error)
	// Case-insensitive substring search over full names. Users whose id is in
	// exclude are never returned. Results are ordered by name.
	SearchUsers(ctx context.Context, query string, exclude []string, limit int) ([]model.UserSearchResult, error)

	CreateMatch(ctx context.Context, m *model.Match) error
	UpdateMatch(ctx context.Context, m *model.Match) error
	DeleteMatch(ctx context.Context, id string) error
	GetMatch(ctx context.Context, id string) (*model.Match, error)
	ListMatches(ctx context.Context, filter model.MatchFilter) ([]model.Match, error)
	ListOrganizedMatches(ctx context.Context, userID string) ([]model.Match, error)
	ListJoinedMatches(ctx context.Context, userID string) ([]model.Match, error)

	// Adds the user to the match and returns the new participant count. The
	// capacity check and the insert happen in one transaction.
	AddParticipant(ctx context.Context, matchID, userID string) (int, error)
	RemoveParticipant(ctx context.Context, matchID, userID string) (int, error)
	ListParticipants(ctx context.Context, matchID string) ([]model.Participant, error)

	CreateInvitation(ctx context.Context, inv *model.Invitation) error
	GetInvitation(ctx context.Context, id string) (*model.Invitation, error)
	// Joins the invitee to the match and marks the invitation accepted. An
	// invitee that already joined is not an error.
	AcceptInvitation(ctx context.Context, id string) (int, error)
	DeclineInvitation(ctx context.Context, id string) error
	ListInvitations(ctx context.Context, inviteeID string) ([]model.Invitation, error)
	ListPendingInviteeIDs(ctx context.Context, matchID string) ([]string, error)

	// Returns only the stored days. Days that were never set are missing from the map.
	GetUserAvailability(ctx context.Context, userID string) (map[int]bool, error)
	SetUserAvailability(ctx context.Context, userID string, day int, available bool) error
	ListAvailableUsers(ctx context.Context, day int) ([]model.UserSearchResult, error)

	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	UnreadNotificationCount(ctx context.Context, userID string) (int, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, userID, id string) error
	DeleteReadNotifications(ctx context.Context, before time.Time) (int64, error)
}
