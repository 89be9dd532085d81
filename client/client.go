// Package client is a typed HTTP client for the MatchHub API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ETTyler/football/model"
)

// APIError is a non 2xx response. Message is the text the API returned.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return e.Message
}

// StatusCode returns the HTTP status of an API error, or 0 if err did not
// come from the API.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Participation is the result of joining or leaving a match.
type Participation struct {
	MatchID string `json:"match_id"`
	Joined  bool   `json:"joined"`
	// Nil when the server did not report a count.
	CurrentPlayers *int `json:"current_players"`
}

type Client struct {
	url        string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a client for the API at baseURL, e.g. http://localhost:3000.
// token may be empty and set later by signing in.
func New(baseURL, token string) *Client {
	return &Client{
		url:   strings.TrimSuffix(baseURL, "/") + "/api",
		token: token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*model.Session, error) {
	body := map[string]string{"email": email, "password": password, "full_name": fullName}
	return c.startSession(ctx, "/auth/signup", body)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	body := map[string]string{"email": email, "password": password}
	return c.startSession(ctx, "/auth/signin", body)
}

func (c *Client) startSession(ctx context.Context, path string, body any) (*model.Session, error) {
	var s model.Session
	if err := c.do(ctx, http.MethodPost, path, nil, body, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/signout", nil, nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListMatches(ctx context.Context, filter model.MatchFilter) ([]model.Match, error) {
	params := url.Values{}
	if filter.Dates != "" {
		params.Set("date", string(filter.Dates))
	}
	if filter.PitchType != model.PITCH_UNKNOWN {
		params.Set("pitch_type", string(filter.PitchType))
	}
	if filter.Search != "" {
		params.Set("q", filter.Search)
	}

	var matches []model.Match
	if err := c.do(ctx, http.MethodGet, "/matches", params, nil, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (c *Client) GetMatch(ctx context.Context, matchID string) (*model.Match, error) {
	var m model.Match
	if err := c.do(ctx, http.MethodGet, matchPath(matchID, ""), nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) CreateMatch(ctx context.Context, input model.MatchInput, inviteeIDs []string, message string) (*model.CreatedMatch, error) {
	body := struct {
		model.MatchInput
		InviteeIDs []string `json:"invitee_ids,omitempty"`
		Message    string   `json:"message,omitempty"`
	}{input, inviteeIDs, message}

	var created model.CreatedMatch
	if err := c.do(ctx, http.MethodPost, "/matches", nil, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateMatch(ctx context.Context, matchID string, input model.MatchInput) (*model.Match, error) {
	var m model.Match
	if err := c.do(ctx, http.MethodPut, matchPath(matchID, ""), nil, input, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DeleteMatch(ctx context.Context, matchID string) error {
	return c.do(ctx, http.MethodDelete, matchPath(matchID, ""), nil, nil, nil)
}

func (c *Client) Participants(ctx context.Context, matchID string) ([]model.Participant, error) {
	var participants []model.Participant
	if err := c.do(ctx, http.MethodGet, matchPath(matchID, "/participants"), nil, nil, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func (c *Client) JoinMatch(ctx context.Context, matchID string) (*Participation, error) {
	var p Participation
	if err := c.do(ctx, http.MethodPost, matchPath(matchID, "/join"), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) LeaveMatch(ctx context.Context, matchID string) (*Participation, error) {
	var p Participation
	if err := c.do(ctx, http.MethodPost, matchPath(matchID, "/leave"), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) InviteUsers(ctx context.Context, matchID string, inviteeIDs []string, message string) (*model.InviteResult, error) {
	body := map[string]any{"invitee_ids": inviteeIDs, "message": message}

	var res model.InviteResult
	if err := c.do(ctx, http.MethodPost, matchPath(matchID, "/invitations"), nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) SearchInvitees(ctx context.Context, matchID, query string) (model.UserBuckets, error) {
	params := url.Values{}
	params.Set("q", query)

	buckets := model.EmptyBuckets()
	if err := c.do(ctx, http.MethodGet, matchPath(matchID, "/invitees/search"), params, nil, &buckets); err != nil {
		return model.EmptyBuckets(), err
	}
	return buckets, nil
}

func (c *Client) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	var d model.Dashboard
	if err := c.do(ctx, http.MethodGet, "/dashboard", nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SearchUsers buckets users matching query by their availability on
// targetDate (YYYY-MM-DD, may be empty).
func (c *Client) SearchUsers(ctx context.Context, query, targetDate string, exclude []string) (model.UserBuckets, error) {
	params := url.Values{}
	params.Set("q", query)
	if targetDate != "" {
		params.Set("date", targetDate)
	}
	if len(exclude) > 0 {
		params.Set("exclude", strings.Join(exclude, ","))
	}

	buckets := model.EmptyBuckets()
	if err := c.do(ctx, http.MethodGet, "/users/search", params, nil, &buckets); err != nil {
		return model.EmptyBuckets(), err
	}
	return buckets, nil
}

func (c *Client) Availability(ctx context.Context) ([]model.DayAvailability, error) {
	var week []model.DayAvailability
	if err := c.do(ctx, http.MethodGet, "/availability", nil, nil, &week); err != nil {
		return nil, err
	}
	return week, nil
}

// SetAvailability saves the flag for one weekday, 0 for Sunday, and returns
// the whole week.
func (c *Client) SetAvailability(ctx context.Context, day int, available bool) ([]model.DayAvailability, error) {
	body := map[string]bool{"available": available}

	var week []model.DayAvailability
	if err := c.do(ctx, http.MethodPut, "/availability/"+strconv.Itoa(day), nil, body, &week); err != nil {
		return nil, err
	}
	return week, nil
}

func (c *Client) AvailableUsers(ctx context.Context, date string) ([]model.UserSearchResult, error) {
	params := url.Values{}
	params.Set("date", date)

	var users []model.UserSearchResult
	if err := c.do(ctx, http.MethodGet, "/availability/users", params, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) Invitations(ctx context.Context) ([]model.Invitation, error) {
	var invitations []model.Invitation
	if err := c.do(ctx, http.MethodGet, "/invitations", nil, nil, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

func (c *Client) RespondToInvitation(ctx context.Context, invitationID string, status model.InvitationStatus) (*model.Invitation, error) {
	body := map[string]string{"status": string(status)}

	var inv model.Invitation
	path := "/invitations/" + url.PathEscape(invitationID) + "/respond"
	if err := c.do(ctx, http.MethodPost, path, nil, body, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Notifications lists the newest notifications. A limit of 0 uses the
// server default.
func (c *Client) Notifications(ctx context.Context, limit int) ([]model.Notification, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var notifications []model.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications", params, nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var res struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/notifications/"+url.PathEscape(id)+"/read", nil, nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/notifications/read-all", nil, nil, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) SearchLocations(ctx context.Context, query string) ([]model.Location, error) {
	params := url.Values{}
	params.Set("q", query)

	var locations []model.Location
	if err := c.do(ctx, http.MethodGet, "/locations/search", params, nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var res struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.do(ctx, http.MethodGet, "/locations/reverse", params, nil, &res); err != nil {
		return "", err
	}
	return res.DisplayName, nil
}

func matchPath(matchID, suffix string) string {
	return "/matches/" + url.PathEscape(matchID) + suffix
}

// do sends body as json and decodes the response into v. Either may be nil.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, v any) error {
	u := c.url + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("error creating http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&parsed) == nil {
			apiErr.Message = parsed.Error
		}
		return apiErr
	}

	if v == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}
