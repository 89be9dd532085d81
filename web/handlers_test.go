package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ETTyler/football/controller"
	"github.com/ETTyler/football/controller/mockcontroller"
	"github.com/ETTyler/football/db"
	"github.com/ETTyler/football/model"
	"github.com/stretchr/testify/mock"
)

const (
	testToken   = "good-token"
	testMatchID = "5b0c4b4e-8a43-4a2b-9f5f-4a4f7b3e9d11"
	testInvID   = "0f6a7c1e-2d3b-4c5d-8e9f-a0b1c2d3e4f5"
)

var testUser = &model.User{ID: "a3e2c1d0-0000-4000-8000-000000000001", FullName: "Sam Striker", Email: "sam@example.com"}

// newTestServer serves the API backed by ctrl. Requests carrying testToken
// are signed in as testUser.
func newTestServer(ctrl *mockcontroller.C) *httptest.Server {
	ctrl.On("VerifySession", mock.Anything, testToken).Return(testUser, nil)
	ctrl.On("VerifySession", mock.Anything, mock.Anything).Return(nil, controller.ErrInvalidSession)

	cfg := Config{
		Port:           3000,
		AllowedOrigins: []string{"http://localhost:3000"},
		SignInRedirect: "/dashboard",
	}
	return httptest.NewServer(newHandler(cfg, ctrl))
}

func doRequest(t *testing.T, method, url, body string, authed bool) *http.Response {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("error creating request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}

	client := &http.Client{
		// Redirects are checked by the tests.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("error making request: %v", err)
	}
	return resp
}

func errorMessage(t *testing.T, resp *http.Response) string {
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("error decoding error response: %v", err)
	}
	return e.Error
}

func TestRequireSession(t *testing.T) {
	ctrl := &mockcontroller.C{}
	s := newTestServer(ctrl)
	defer s.Close()

	resp := doRequest(t, http.MethodGet, s.URL+"/api/me", "", false)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without a session, got %d", resp.StatusCode)
	}
	if msg := errorMessage(t, resp); msg != "You must be signed in: session is not valid" {
		t.Errorf("unexpected error message: %s", msg)
	}

	resp = doRequest(t, http.MethodGet, s.URL+"/api/me", "", true)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with a bearer token, got %d", resp.StatusCode)
	}
	var u model.User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		t.Fatalf("error decoding user: %v", err)
	}
	if u.ID != testUser.ID {
		t.Errorf("wrong user returned: %+v", u)
	}

	req, _ := http.NewRequest(http.MethodGet, s.URL+"/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: testToken})
	cookieResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("error making request: %v", err)
	}
	defer cookieResp.Body.Close()
	if cookieResp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with a session cookie, got %d", cookieResp.StatusCode)
	}
}

func TestSignUpHandler(t *testing.T) {
	tests := map[string]struct {
		body     string
		err      error
		exStatus int
		exMsg    string
	}{
		"created":     {body: `{"email":"sam@example.com","password":"secret1","full_name":"Sam"}`, exStatus: http.StatusCreated},
		"email taken": {body: `{"email":"sam@example.com","password":"secret1","full_name":"Sam"}`, err: db.ErrEmailTaken, exStatus: http.StatusConflict, exMsg: "Failed to sign up: email address already registered"},
		"bad json":    {body: `{"email":`, exStatus: http.StatusBadRequest, exMsg: "Failed to sign up: invalid input: request body is not valid json"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := &mockcontroller.C{}
			s := newTestServer(ctrl)
			defer s.Close()

			session := &model.Session{Token: "new-token", Expires: time.Now().Add(time.Hour), User: testUser}
			if tc.err != nil {
				ctrl.On("SignUp", mock.Anything, "sam@example.com", "secret1", "Sam").Return(nil, tc.err)
			} else {
				ctrl.On("SignUp", mock.Anything, "sam@example.com", "secret1", "Sam").Return(testUser, nil)
			}
			ctrl.On("IssueSession", testUser).Return(session, nil)

			resp := doRequest(t, http.MethodPost, s.URL+"/api/auth/signup", tc.body, false)
			defer resp.Body.Close()
			if resp.StatusCode != tc.exStatus {
				t.Fatalf("expected status %d, got %d", tc.exStatus, resp.StatusCode)
			}
			if tc.exMsg != "" {
				if msg := errorMessage(t, resp); msg != tc.exMsg {
					t.Errorf("unexpected error message: %s", msg)
				}
				return
			}

			var cookie *http.Cookie
			for _, c := range resp.Cookies() {
				if c.Name == SessionCookie {
					cookie = c
				}
			}
			if cookie == nil || cookie.Value != "new-token" || !cookie.HttpOnly {
				t.Errorf("expected an http only session cookie, got: %+v", cookie)
			}
		})
	}
}

func TestSignOutHandler(t *testing.T) {
	ctrl := &mockcontroller.C{}
	s := newTestServer(ctrl)
	defer s.Close()

	resp := doRequest(t, http.MethodPost, s.URL+"/api/auth/signout", "", false)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
	cleared := false
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Errorf("expected the session cookie to be cleared")
	}
}

func TestOAuthHandlers(t *testing.T) {
	ctrl := &mockcontroller.C{}
	s := newTestServer(ctrl)
	defer s.Close()

	ctrl.On("OAuthStart").Return("https://idp.example.com/auth?state=abc", nil)
	ctrl.On("OAuthSignIn", mock.Anything, "abc", "code").Return(testUser, nil)
	ctrl.On("OAuthSignIn", mock.Anything, "stale", "code").Return(nil, controller.ErrInvalidOAuthState)
	ctrl.On("IssueSession", testUser).Return(&model.Session{Token: "oauth-token", Expires: time.Now().Add(time.Hour)}, nil)

	resp := doRequest(t, http.MethodGet, s.URL+"/api/auth/oauth/start", "", false)
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "https://idp.example.com/auth?state=abc" {
		t.Errorf("expected a redirect to the provider, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp = doRequest(t, http.MethodGet, s.URL+"/api/auth/oauth/callback?state=abc&code=code", "", false)
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/dashboard" {
		t.Errorf("expected a redirect to the dashboard, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
	if len(resp.Cookies()) == 0 || resp.Cookies()[0].Value != "oauth-token" {
		t.Errorf("expected the session cookie to be set")
	}

	resp = doRequest(t, http.MethodGet, s.URL+"/api/auth/oauth/callback?state=stale&code=code", "", false)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a stale state, got %d", resp.StatusCode)
	}
}

func TestJoinMatchHandler(t *testing.T) {
	tests := map[string]struct {
		matchID  string
		count    int
		err      error
		exStatus int
		exMsg    string
	}{
		"joined":       {matchID: testMatchID, count: 7, exStatus: http.StatusOK},
		"full":         {matchID: testMatchID, count: 10, err: db.ErrMatchFull, exStatus: http.StatusConflict, exMsg: "Failed to join match: match is full"},
		"joined twice": {matchID: testMatchID, count: 7, err: db.ErrAlreadyJoined, exStatus: http.StatusConflict, exMsg: "Failed to join match: already joined this match"},
		"past":         {matchID: testMatchID, err: controller.ErrMatchInPast, exStatus: http.StatusBadRequest, exMsg: "Failed to join match: match has already started"},
		"not found":    {matchID: testMatchID, err: db.ErrMatchNotFound, exStatus: http.StatusNotFound, exMsg: "Failed to join match: match not found"},
		"db down":      {matchID: testMatchID, err: errors.New("connection reset"), exStatus: http.StatusInternalServerError, exMsg: "Failed to join match"},
		"bad id":       {matchID: "42", exStatus: http.StatusBadRequest, exMsg: "Failed to join match: not a valid id: matchID"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := &mockcontroller.C{}
			s := newTestServer(ctrl)
			defer s.Close()
			ctrl.On("JoinMatch", mock.Anything, testUser.ID, testMatchID).Return(tc.count, tc.err)

			resp := doRequest(t, http.MethodPost, s.URL+"/api/matches/"+tc.matchID+"/join", "", true)
			defer resp.Body.Close()
			if resp.StatusCode != tc.exStatus {
				t.Fatalf("expected status %d, got %d", tc.exStatus, resp.StatusCode)
			}
			if tc.exMsg != "" {
				if msg := errorMessage(t, resp); msg != tc.exMsg {
					t.Errorf("unexpected error message: %s", msg)
				}
				if tc.matchID != testMatchID {
					ctrl.AssertNotCalled(t, "JoinMatch", mock.Anything, mock.Anything, mock.Anything)
				}
				return
			}

			var res participationResponse
			if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
				t.Fatalf("error decoding response: %v", err)
			}
			if !res.Joined || res.CurrentPlayers != tc.count || res.MatchID != testMatchID {
				t.Errorf("unexpected response: %+v", res)
			}
		})
	}
}

func TestLeaveMatchHandler(t *testing.T) {
	ctrl := &mockcontroller.C{}
	s := newTestServer(ctrl)
	defer s.Close()
	ctrl.On("LeaveMatch", mock.Anything, testUser.ID, testMatchID).Return(4, controller.ErrOrganizerCannotLeave)

	resp := doRequest(t, http.MethodPost, s.URL+"/api/matches/"+testMatchID+"/leave", "", true)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if msg := errorMessage(t, resp); msg != "Failed to leave match: organizer cannot leave their own match" {
		t.Errorf("unexpected error message: %s", msg)
	}
}

func TestListMatchesHandler(t *testing.T) {
	tests := map[string]struct {
		query    string
		filter   model.MatchFilter
		exStatus int
	}{
		"no filter":    {query: "", filter: model.MatchFilter{Dates: model.DATES_ALL}, exStatus: http.StatusOK},
		"everything":   {query: "?date=this-week&pitch_type=7-a-side&q=marsh", filter: model.MatchFilter{Dates: model.DATES_THIS_WEEK, PitchType: model.PITCH_7, Search: "marsh"}, exStatus: http.StatusOK},
		"all pitches":  {query: "?date=today&pitch_type=all", filter: model.MatchFilter{Dates: model.DATES_TODAY}, exStatus: http.StatusOK},
		"bad pitch":    {query: "?pitch_type=futsal", exStatus: http.StatusBadRequest},
		"unknown date": {query: "?date=someday", filter: model.MatchFilter{Dates: model.DATES_ALL}, exStatus: http.StatusOK},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := &mockcontroller.C{}
			s := newTestServer(ctrl)
			defer s.Close()
			ctrl.On("ListMatches", mock.Anything, tc.filter).Return([]model.Match{{ID: testMatchID}}, nil)

			resp := doRequest(t, http.MethodGet, s.URL+"/api/matches"+tc.query, "", true)
			defer resp.Body.Close()
			if resp.StatusCode != tc.exStatus {
				t.Fatalf("expected status %d, got %d", tc.exStatus, resp.StatusCode)
			}
			if tc.exStatus == http.StatusOK {
				ctrl.AssertCalled(t, "ListMatches", mock.Anything, tc.filter)
			}
		})
	}
}

func TestCreateMatchHandler(t *testing.T) {
	ctrl := &mockcontroller.C{}
	s := newTestServer(ctrl)
	defer s.Close()

	input := model.MatchInput{
		Title:      "Sunday League",
		Date:       "2024-03-10",
		Time:       "09:30",
		Location:   "Hackney Marshes",
		Latitude:   51.5432,
		Longitude:  -0.0312,
		PitchType:  model.PITCH_11,
		Pricing:    4,
		MaxPlayers: 22,
	}
	created := &model.CreatedMatch{
		Match:   &model.Match{ID: testMatchID, Title: input.Title},
		Invites: model.InviteResult{Invited: []model.Invitation{}, Failed: []model.InviteFailure{{UserID: "x", Reason: "user not found"}}},
	}
	ctrl.On("CreateMatch", mock.Anything, testUser.ID, input, []string{"x"}, "Bring boots").Return(created, nil)

	body := `{"title":"Sunday League","date":"2024-03-10","time":"09:30","location":"Hackney Marshes",
		"latitude":51.5432,"longitude":-0.0312,"pitch_type":"11-a-side","pricing":4,"max_players":22,
		"invitee_ids":["x"],"message":"Bring boots"}`
	resp := doRequest(t, http.MethodPost, s.URL+"/api/matches", body, true)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var res model.CreatedMatch
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if res.Match.ID != testMatchID || len(res.Invites.Failed) != 1 {
		t.Errorf("unexpected response: %+v", res)
	}
}

func TestUpdateMatchHandler_notOrganizer(t *testing.T) {
	ctrl := &mockcontroller.C{}
	s := newTestServer(ctrl)
	defer s.Close()
	ctrl.On("UpdateMatch", mock.Anything, testUser.ID, testMatchID, mock.Anything).Return(nil, controller.ErrNotOrganizer)

	resp := doRequest(t, http.MethodPut, s.URL+"/api/matches/"+testMatchID, `{"title":"Mine now"}`, true)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}

func TestUserSearchHandler(t *testing.T) {
	ctrl := &mockcontroller.C{}
	s := newTestServer(ctrl)
	defer s.Close()

	buckets := model.EmptyBuckets()
	buckets.Available = append(buckets.Available, model.UserSearchResult{ID: "u2", FullName: "Alex"})
	ctrl.On("SearchUsersWithAvailability", mock.Anything, "al", "2024-03-04", []string{"u1", "u3"}).Return(buckets)

	resp := doRequest(t, http.MethodGet, s.URL+"/api/users/search?q=al&date=2024-03-04&exclude=u1,,%20u3", "", true)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var res map[string][]model.UserSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if len(res["available"]) != 1 || res["unavailable"] == nil || res["others"] == nil {
		t.Errorf("unexpected buckets: %+v", res)
	}
}

func TestSetAvailabilityHandler(t *testing.T) {
	tests := map[string]struct {
		day      string
		body     string
		exStatus int
	}{
		"saved":        {day: "3", body: `{"available":false}`, exStatus: http.StatusOK},
		"day too big":  {day: "7", body: `{"available":false}`, exStatus: http.StatusBadRequest},
		"not a number": {day: "monday", body: `{"available":false}`, exStatus: http.StatusBadRequest},
		"missing flag": {day: "3", body: `{}`, exStatus: http.StatusBadRequest},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := &mockcontroller.C{}
			s := newTestServer(ctrl)
			defer s.Close()
			ctrl.On("SetUserAvailability", mock.Anything, testUser.ID, 3, false).Return(nil)
			ctrl.On("SetUserAvailability", mock.Anything, testUser.ID, 7, false).Return(controller.ErrInvalidDay)
			ctrl.On("GetUserAvailability", mock.Anything, testUser.ID).Return(model.WeekAvailability(map[int]bool{3: false}))

			resp := doRequest(t, http.MethodPut, s.URL+"/api/availability/"+tc.day, tc.body, true)
			defer resp.Body.Close()
			if resp.StatusCode != tc.exStatus {
				t.Fatalf("expected status %d, got %d", tc.exStatus, resp.StatusCode)
			}
			if tc.exStatus != http.StatusOK {
				return
			}

			var week []model.DayAvailability
			if err := json.NewDecoder(resp.Body).Decode(&week); err != nil {
				t.Fatalf("error decoding response: %v", err)
			}
			if len(week) != 7 || week[3].Available {
				t.Errorf("unexpected week: %+v", week)
			}
		})
	}
}

func TestRespondInvitationHandler(t *testing.T) {
	tests := map[string]struct {
		body     string
		err      error
		exStatus int
	}{
		"accepted":    {body: `{"status":"accepted"}`, exStatus: http.StatusOK},
		"unknown":     {body: `{"status":"maybe"}`, exStatus: http.StatusBadRequest},
		"not invitee": {body: `{"status":"declined"}`, err: controller.ErrNotInvitee, exStatus: http.StatusForbidden},
		"answered":    {body: `{"status":"declined"}`, err: db.ErrInvitationNotPending, exStatus: http.StatusConflict},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := &mockcontroller.C{}
			s := newTestServer(ctrl)
			defer s.Close()

			inv := &model.Invitation{ID: testInvID, Status: model.INVITATION_ACCEPTED}
			if tc.err != nil {
				ctrl.On("RespondToInvitation", mock.Anything, testUser.ID, testInvID, mock.Anything).Return(nil, tc.err)
			} else {
				ctrl.On("RespondToInvitation", mock.Anything, testUser.ID, testInvID, model.INVITATION_ACCEPTED).Return(inv, nil)
			}

			resp := doRequest(t, http.MethodPost, s.URL+"/api/invitations/"+testInvID+"/respond", tc.body, true)
			defer resp.Body.Close()
			if resp.StatusCode != tc.exStatus {
				t.Errorf("expected status %d, got %d", tc.exStatus, resp.StatusCode)
			}
		})
	}
}

func TestNotificationHandlers(t *testing.T) {
	ctrl := &mockcontroller.C{}
	s := newTestServer(ctrl)
	defer s.Close()

	ctrl.On("ListNotifications", mock.Anything, testUser.ID, 5).Return([]model.Notification{{ID: "n1"}}, nil)
	ctrl.On("UnreadNotificationCount", mock.Anything, testUser.ID).Return(4)
	ctrl.On("MarkNotificationRead", mock.Anything, testUser.ID, testInvID).Return(db.ErrNotificationNotFound)
	ctrl.On("MarkAllNotificationsRead", mock.Anything, testUser.ID).Return(nil)

	resp := doRequest(t, http.MethodGet, s.URL+"/api/notifications?limit=5", "", true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 listing notifications, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, s.URL+"/api/notifications?limit=lots", "", true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad limit, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, s.URL+"/api/notifications/unread-count", "", true)
	var count countResponse
	json.NewDecoder(resp.Body).Decode(&count)
	resp.Body.Close()
	if count.Count != 4 {
		t.Errorf("expected 4 unread, got %d", count.Count)
	}

	// Someone else's notification looks the same as a missing one.
	resp = doRequest(t, http.MethodPost, s.URL+"/api/notifications/"+testInvID+"/read", "", true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 marking a missing notification, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, s.URL+"/api/notifications/read-all", "", true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 marking all read, got %d", resp.StatusCode)
	}
}

func TestReverseGeocodeHandler(t *testing.T) {
	ctrl := &mockcontroller.C{}
	s := newTestServer(ctrl)
	defer s.Close()
	ctrl.On("ReverseGeocode", mock.Anything, 51.5, -0.1).Return("Hackney Marshes", nil)

	resp := doRequest(t, http.MethodGet, s.URL+"/api/locations/reverse?lat=51.5&lon=-0.1", "", true)
	defer resp.Body.Close()
	var res reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if res.DisplayName != "Hackney Marshes" {
		t.Errorf("unexpected response: %+v", res)
	}

	bad := doRequest(t, http.MethodGet, s.URL+"/api/locations/reverse?lat=north&lon=-0.1", "", true)
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad latitude, got %d", bad.StatusCode)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := map[string]struct {
		err      error
		expected int
	}{
		"invalid input": {err: controller.ErrInvalidInput, expected: http.StatusBadRequest},
		"wrapped input": {err: errors.Join(errors.New("ctx"), controller.ErrInvalidInput), expected: http.StatusBadRequest},
		"credentials":   {err: controller.ErrInvalidCredentials, expected: http.StatusUnauthorized},
		"not organizer": {err: controller.ErrNotOrganizer, expected: http.StatusForbidden},
		"no invitation": {err: db.ErrInvitationNotFound, expected: http.StatusNotFound},
		"duplicate":     {err: db.ErrDuplicateInvitation, expected: http.StatusConflict},
		"email taken":   {err: db.ErrEmailTaken, expected: http.StatusConflict},
		"unknown":       {err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := errorStatus(tc.err); got != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}
