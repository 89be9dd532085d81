package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ETTyler/football/db"
	"github.com/ETTyler/football/geocode"
	"github.com/ETTyler/football/model"
	"github.com/ETTyler/football/notify"
	"github.com/itbasis/go-clock"
	"golang.org/x/oauth2"
)

var (
	ErrInvalidInput         error = errors.New("invalid input")
	ErrInvalidCredentials   error = errors.New("invalid email or password")
	ErrInvalidSession       error = errors.New("session is not valid")
	ErrNotOrganizer         error = errors.New("only the organizer can do this")
	ErrNotInvitee           error = errors.New("only the invited user can respond to this invitation")
	ErrMatchInPast          error = errors.New("match has already started")
	ErrOrganizerCannotLeave error = errors.New("organizer cannot leave their own match")
	ErrInvalidDay           error = errors.New("day of week must be between 0 and 6")
	ErrOAuthNotConfigured   error = errors.New("oauth sign in is not configured")
	ErrInvalidOAuthState    error = errors.New("oauth state is not valid")
)

// C encapsulates business logic without worrying about any web layers
type C interface {
	SignUp(ctx context.Context, email, password, fullName string) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*model.User, error)
	// Issues a signed session token for the user.
	IssueSession(u *model.User) (*model.Session, error)
	// Checks the session token and returns the user it belongs to.
	VerifySession(ctx context.Context, token string) (*model.User, error)
	OAuthStart() (string, error)
	// Completes the provider redirect and returns the signed in user, creating
	// the user the first time they sign in.
	OAuthSignIn(ctx context.Context, state, code string) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)

	CreateMatch(ctx context.Context, organizerID string, input model.MatchInput, inviteeIDs []string, message string) (*model.CreatedMatch, error)
	UpdateMatch(ctx context.Context, userID, matchID string, input model.MatchInput) (*model.Match, error)
	DeleteMatch(ctx context.Context, userID, matchID string) error
	GetMatch(ctx context.Context, matchID string) (*model.Match, error)
	ListMatches(ctx context.Context, filter model.MatchFilter) ([]model.Match, error)
	Dashboard(ctx context.Context, userID string) (*model.Dashboard, error)

	// Join and leave return the participant count after the change.
	JoinMatch(ctx context.Context, userID, matchID string) (int, error)
	LeaveMatch(ctx context.Context, userID, matchID string) (int, error)
	ListParticipants(ctx context.Context, matchID string) ([]model.Participant, error)

	InviteUsers(ctx context.Context, organizerID, matchID string, inviteeIDs []string, message string) (*model.InviteResult, error)
	RespondToInvitation(ctx context.Context, userID, invitationID string, status model.InvitationStatus) (*model.Invitation, error)
	ListInvitations(ctx context.Context, userID string) ([]model.Invitation, error)
	// Searches for users to invite to a match, skipping participants and users
	// with a pending invitation, bucketed by availability on the match date.
	SearchInvitees(ctx context.Context, organizerID, matchID, query string) (model.UserBuckets, error)

	// Never fails: any problem degrades to empty or unknown buckets.
	SearchUsersWithAvailability(ctx context.Context, query, targetDate string, exclude []string) model.UserBuckets
	GetUserAvailability(ctx context.Context, userID string) []model.DayAvailability
	SetUserAvailability(ctx context.Context, userID string, day int, available bool) error
	AvailableUsersForDate(ctx context.Context, date string) ([]model.UserSearchResult, error)

	ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	// Returns 0 when the count cannot be read.
	UnreadNotificationCount(ctx context.Context, userID string) int
	MarkNotificationRead(ctx context.Context, userID, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, userID, id string) error
	SubscribeNotifications(userID string) *notify.Subscription
	PruneNotifications(ctx context.Context) (int64, error)
	RunPeriodicNotificationCleanup(frequency time.Duration, shutdown chan bool, wg *sync.WaitGroup)

	SearchLocations(ctx context.Context, query string) ([]model.Location, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

type Config struct {
	// Key for signing session tokens. Required.
	JWTSecret []byte
	// Optional. When nil OAuth sign in is disabled.
	OAuth       *oauth2.Config
	UserInfoURL string
	// Used to read calendar dates. Defaults to time.Local.
	Location *time.Location
	// How long read notifications are kept. Defaults to 30 days.
	NotificationRetention time.Duration
}

type controller struct {
	clock    clock.Clock
	db       db.DB
	geocoder geocode.Client
	hub      *notify.Hub

	jwtSecret   []byte
	oauthConfig *oauth2.Config
	userInfoURL string
	location    *time.Location
	retention   time.Duration

	oauthMu     sync.Mutex
	oauthStates map[string]time.Time
}

func New(clock clock.Clock, db db.DB, geocoder geocode.Client, hub *notify.Hub, cfg Config) (C, error) {
	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("a jwt secret is required")
	}
	if cfg.OAuth != nil && cfg.UserInfoURL == "" {
		return nil, errors.New("oauth requires a userinfo url")
	}
	if hub == nil {
		hub = notify.NewHub(notify.DefaultBuffer)
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	retention := cfg.NotificationRetention
	if retention <= 0 {
		retention = DefaultNotificationRetention
	}

	c := &controller{
		clock:       clock,
		db:          db,
		geocoder:    geocoder,
		hub:         hub,
		jwtSecret:   cfg.JWTSecret,
		oauthConfig: cfg.OAuth,
		userInfoURL: cfg.UserInfoURL,
		location:    loc,
		retention:   retention,
		oauthStates: make(map[string]time.Time),
	}
	return c, nil
}

// today is the current calendar date in the controller's location.
func (c *controller) today() time.Time {
	now := c.clock.Now().In(c.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.location)
}

func (c *controller) now() time.Time {
	return c.clock.Now().In(c.location)
}
