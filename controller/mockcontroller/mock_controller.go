package mockcontroller

import (
	"context"
	"sync"
	"time"

	"github.com/ETTyler/football/model"
	"github.com/ETTyler/football/notify"
	"github.com/stretchr/testify/mock"
)

type C struct {
	mock.Mock
}

func (c *C) SignUp(ctx context.Context, email, password, fullName string) (*model.User, error) {
	args := c.Called(ctx, email, password, fullName)
	return userOrNil(args), args.Error(1)
}

func (c *C) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	args := c.Called(ctx, email, password)
	return userOrNil(args), args.Error(1)
}

func (c *C) IssueSession(u *model.User) (*model.Session, error) {
	args := c.Called(u)

	var s *model.Session
	if args.Get(0) != nil {
		s = args.Get(0).(*model.Session)
	}
	return s, args.Error(1)
}

func (c *C) VerifySession(ctx context.Context, token string) (*model.User, error) {
	args := c.Called(ctx, token)
	return userOrNil(args), args.Error(1)
}

func (c *C) OAuthStart() (string, error) {
	args := c.Called()
	return args.String(0), args.Error(1)
}

func (c *C) OAuthSignIn(ctx context.Context, state, code string) (*model.User, error) {
	args := c.Called(ctx, state, code)
	return userOrNil(args), args.Error(1)
}

func (c *C) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := c.Called(ctx, id)
	return userOrNil(args), args.Error(1)
}

func userOrNil(args mock.Arguments) *model.User {
	var u *model.User
	if args.Get(0) != nil {
		u = args.Get(0).(*model.User)
	}
	return u
}

func (c *C) CreateMatch(ctx context.Context, organizerID string, input model.MatchInput, inviteeIDs []string, message string) (*model.CreatedMatch, error) {
	args := c.Called(ctx, organizerID, input, inviteeIDs, message)

	var r *model.CreatedMatch
	if args.Get(0) != nil {
		r = args.Get(0).(*model.CreatedMatch)
	}
	return r, args.Error(1)
}

func (c *C) UpdateMatch(ctx context.Context, userID, matchID string, input model.MatchInput) (*model.Match, error) {
	args := c.Called(ctx, userID, matchID, input)
	return matchOrNil(args), args.Error(1)
}

func (c *C) DeleteMatch(ctx context.Context, userID, matchID string) error {
	args := c.Called(ctx, userID, matchID)
	return args.Error(0)
}

func (c *C) GetMatch(ctx context.Context, matchID string) (*model.Match, error) {
	args := c.Called(ctx, matchID)
	return matchOrNil(args), args.Error(1)
}

func matchOrNil(args mock.Arguments) *model.Match {
	var m *model.Match
	if args.Get(0) != nil {
		m = args.Get(0).(*model.Match)
	}
	return m
}

func (c *C) ListMatches(ctx context.Context, filter model.MatchFilter) ([]model.Match, error) {
	args := c.Called(ctx, filter)

	var r []model.Match
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Match)
	}
	return r, args.Error(1)
}

func (c *C) Dashboard(ctx context.Context, userID string) (*model.Dashboard, error) {
	args := c.Called(ctx, userID)

	var d *model.Dashboard
	if args.Get(0) != nil {
		d = args.Get(0).(*model.Dashboard)
	}
	return d, args.Error(1)
}

func (c *C) JoinMatch(ctx context.Context, userID, matchID string) (int, error) {
	args := c.Called(ctx, userID, matchID)
	return args.Int(0), args.Error(1)
}

func (c *C) LeaveMatch(ctx context.Context, userID, matchID string) (int, error) {
	args := c.Called(ctx, userID, matchID)
	return args.Int(0), args.Error(1)
}

func (c *C) ListParticipants(ctx context.Context, matchID string) ([]model.Participant, error) {
	args := c.Called(ctx, matchID)

	var r []model.Participant
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Participant)
	}
	return r, args.Error(1)
}

func (c *C) InviteUsers(ctx context.Context, organizerID, matchID string, inviteeIDs []string, message string) (*model.InviteResult, error) {
	args := c.Called(ctx, organizerID, matchID, inviteeIDs, message)

	var r *model.InviteResult
	if args.Get(0) != nil {
		r = args.Get(0).(*model.InviteResult)
	}
	return r, args.Error(1)
}

func (c *C) RespondToInvitation(ctx context.Context, userID, invitationID string, status model.InvitationStatus) (*model.Invitation, error) {
	args := c.Called(ctx, userID, invitationID, status)

	var inv *model.Invitation
	if args.Get(0) != nil {
		inv = args.Get(0).(*model.Invitation)
	}
	return inv, args.Error(1)
}

func (c *C) ListInvitations(ctx context.Context, userID string) ([]model.Invitation, error) {
	args := c.Called(ctx, userID)

	var r []model.Invitation
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Invitation)
	}
	return r, args.Error(1)
}

func (c *C) SearchInvitees(ctx context.Context, organizerID, matchID, query string) (model.UserBuckets, error) {
	args := c.Called(ctx, organizerID, matchID, query)
	return args.Get(0).(model.UserBuckets), args.Error(1)
}

func (c *C) SearchUsersWithAvailability(ctx context.Context, query, targetDate string, exclude []string) model.UserBuckets {
	args := c.Called(ctx, query, targetDate, exclude)
	return args.Get(0).(model.UserBuckets)
}

func (c *C) GetUserAvailability(ctx context.Context, userID string) []model.DayAvailability {
	args := c.Called(ctx, userID)

	var r []model.DayAvailability
	if args.Get(0) != nil {
		r = args.Get(0).([]model.DayAvailability)
	}
	return r
}

func (c *C) SetUserAvailability(ctx context.Context, userID string, day int, available bool) error {
	args := c.Called(ctx, userID, day, available)
	return args.Error(0)
}

func (c *C) AvailableUsersForDate(ctx context.Context, date string) ([]model.UserSearchResult, error) {
	args := c.Called(ctx, date)

	var r []model.UserSearchResult
	if args.Get(0) != nil {
		r = args.Get(0).([]model.UserSearchResult)
	}
	return r, args.Error(1)
}

func (c *C) ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	args := c.Called(ctx, userID, limit)

	var r []model.Notification
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Notification)
	}
	return r, args.Error(1)
}

func (c *C) UnreadNotificationCount(ctx context.Context, userID string) int {
	args := c.Called(ctx, userID)
	return args.Int(0)
}

func (c *C) MarkNotificationRead(ctx context.Context, userID, id string) error {
	args := c.Called(ctx, userID, id)
	return args.Error(0)
}

func (c *C) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	args := c.Called(ctx, userID)
	return args.Error(0)
}

func (c *C) DeleteNotification(ctx context.Context, userID, id string) error {
	args := c.Called(ctx, userID, id)
	return args.Error(0)
}

func (c *C) SubscribeNotifications(userID string) *notify.Subscription {
	args := c.Called(userID)

	var s *notify.Subscription
	if args.Get(0) != nil {
		s = args.Get(0).(*notify.Subscription)
	}
	return s
}

func (c *C) PruneNotifications(ctx context.Context) (int64, error) {
	args := c.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (c *C) RunPeriodicNotificationCleanup(frequency time.Duration, shutdown chan bool, wg *sync.WaitGroup) {
	c.Called(frequency, shutdown, wg)
}

func (c *C) SearchLocations(ctx context.Context, query string) ([]model.Location, error) {
	args := c.Called(ctx, query)

	var r []model.Location
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Location)
	}
	return r, args.Error(1)
}

func (c *C) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	args := c.Called(ctx, lat, lon)
	return args.String(0), args.Error(1)
}
