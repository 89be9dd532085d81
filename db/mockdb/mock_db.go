package mockdb

import (
	"context"
	"time"

	"github.com/ETTyler/football/model"
	"github.com/stretchr/testify/mock"
)

type DB struct {
	mock.Mock
}

func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	args := db.Called(ctx, u)
	return args.Error(0)
}

func (db *DB) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := db.Called(ctx, id)
	return userOrNil(args), args.Error(1)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := db.Called(ctx, email)
	return userOrNil(args), args.Error(1)
}

func (db *DB) GetUserByOAuthSubject(ctx context.Context, subject string) (*model.User, error) {
	args := db.Called(ctx, subject)
	return userOrNil(args), args.Error(1)
}

func userOrNil(args mock.Arguments) *model.User {
	var u *model.User
	if args.Get(0) != nil {
		u = args.Get(0).(*model.User)
	}
	return u
}

func (db *DB) SearchUsers(ctx context.Context, query string, exclude []string, limit int) ([]model.UserSearchResult, error) {
	args := db.Called(ctx, query, exclude, limit)
	return usersOrNil(args), args.Error(1)
}

func (db *DB) ListAvailableUsers(ctx context.Context, day int) ([]model.UserSearchResult, error) {
	args := db.Called(ctx, day)
	return usersOrNil(args), args.Error(1)
}

func usersOrNil(args mock.Arguments) []model.UserSearchResult {
	var r []model.UserSearchResult
	if args.Get(0) != nil {
		r = args.Get(0).([]model.UserSearchResult)
	}
	return r
}

func (db *DB) CreateMatch(ctx context.Context, m *model.Match) error {
	args := db.Called(ctx, m)
	return args.Error(0)
}

func (db *DB) UpdateMatch(ctx context.Context, m *model.Match) error {
	args := db.Called(ctx, m)
	return args.Error(0)
}

func (db *DB) DeleteMatch(ctx context.Context, id string) error {
	args := db.Called(ctx, id)
	return args.Error(0)
}

func (db *DB) GetMatch(ctx context.Context, id string) (*model.Match, error) {
	args := db.Called(ctx, id)

	var m *model.Match
	if args.Get(0) != nil {
		m = args.Get(0).(*model.Match)
	}
	return m, args.Error(1)
}

func (db *DB) ListMatches(ctx context.Context, filter model.MatchFilter) ([]model.Match, error) {
	args := db.Called(ctx, filter)
	return matchesOrNil(args), args.Error(1)
}

func (db *DB) ListOrganizedMatches(ctx context.Context, userID string) ([]model.Match, error) {
	args := db.Called(ctx, userID)
	return matchesOrNil(args), args.Error(1)
}

func (db *DB) ListJoinedMatches(ctx context.Context, userID string) ([]model.Match, error) {
	args := db.Called(ctx, userID)
	return matchesOrNil(args), args.Error(1)
}

func matchesOrNil(args mock.Arguments) []model.Match {
	var r []model.Match
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Match)
	}
	return r
}

func (db *DB) AddParticipant(ctx context.Context, matchID, userID string) (int, error) {
	args := db.Called(ctx, matchID, userID)
	return args.Int(0), args.Error(1)
}

func (db *DB) RemoveParticipant(ctx context.Context, matchID, userID string) (int, error) {
	args := db.Called(ctx, matchID, userID)
	return args.Int(0), args.Error(1)
}

func (db *DB) ListParticipants(ctx context.Context, matchID string) ([]model.Participant, error) {
	args := db.Called(ctx, matchID)

	var r []model.Participant
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Participant)
	}
	return r, args.Error(1)
}

func (db *DB) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	args := db.Called(ctx, inv)
	return args.Error(0)
}

func (db *DB) GetInvitation(ctx context.Context, id string) (*model.Invitation, error) {
	args := db.Called(ctx, id)

	var inv *model.Invitation
	if args.Get(0) != nil {
		inv = args.Get(0).(*model.Invitation)
	}
	return inv, args.Error(1)
}

func (db *DB) AcceptInvitation(ctx context.Context, id string) (int, error) {
	args := db.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (db *DB) DeclineInvitation(ctx context.Context, id string) error {
	args := db.Called(ctx, id)
	return args.Error(0)
}

func (db *DB) ListInvitations(ctx context.Context, inviteeID string) ([]model.Invitation, error) {
	args := db.Called(ctx, inviteeID)

	var r []model.Invitation
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Invitation)
	}
	return r, args.Error(1)
}

func (db *DB) ListPendingInviteeIDs(ctx context.Context, matchID string) ([]string, error) {
	args := db.Called(ctx, matchID)

	var r []string
	if args.Get(0) != nil {
		r = args.Get(0).([]string)
	}
	return r, args.Error(1)
}

func (db *DB) GetUserAvailability(ctx context.Context, userID string) (map[int]bool, error) {
	args := db.Called(ctx, userID)

	var r map[int]bool
	if args.Get(0) != nil {
		r = args.Get(0).(map[int]bool)
	}
	return r, args.Error(1)
}

func (db *DB) SetUserAvailability(ctx context.Context, userID string, day int, available bool) error {
	args := db.Called(ctx, userID, day, available)
	return args.Error(0)
}

func (db *DB) CreateNotification(ctx context.Context, n *model.Notification) error {
	args := db.Called(ctx, n)
	return args.Error(0)
}

func (db *DB) ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	args := db.Called(ctx, userID, limit)

	var r []model.Notification
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Notification)
	}
	return r, args.Error(1)
}

func (db *DB) UnreadNotificationCount(ctx context.Context, userID string) (int, error) {
	args := db.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (db *DB) MarkNotificationRead(ctx context.Context, userID, id string) error {
	args := db.Called(ctx, userID, id)
	return args.Error(0)
}

func (db *DB) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	args := db.Called(ctx, userID)
	return args.Error(0)
}

func (db *DB) DeleteNotification(ctx context.Context, userID, id string) error {
	args := db.Called(ctx, userID, id)
	return args.Error(0)
}

func (db *DB) DeleteReadNotifications(ctx context.Context, before time.Time) (int64, error) {
	args := db.Called(ctx, before)

	var n int64
	if args.Get(0) != nil {
		n = args.Get(0).(int64)
	}
	return n, args.Error(1)
}
