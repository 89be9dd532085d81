package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"
)

const (
	FakeOAuthCode    = "good-code"
	FakeOAuthSubject = "oauth-subject-1234"
	FakeOAuthEmail   = "Casey.Keeper@Example.com"
	FakeOAuthName    = "Casey Keeper"
	fakeAccessToken  = "access_token"
)

// FakeOAuthServer is an OAuth2 provider with token and userinfo endpoints.
// Only FakeOAuthCode can be exchanged.
type FakeOAuthServer struct {
	s *httptest.Server
}

func NewFakeOAuthServer() *FakeOAuthServer {
	r := chi.NewRouter()
	r.Post("/token", fakeTokenHandler)
	r.Get("/userinfo", fakeUserInfoHandler)

	return &FakeOAuthServer{
		s: httptest.NewServer(r),
	}
}

func (f *FakeOAuthServer) Close() {
	f.s.Close()
}

func (f *FakeOAuthServer) URL() string {
	return f.s.URL
}

func (f *FakeOAuthServer) UserInfoURL() string {
	return fmt.Sprintf("%s/userinfo", f.s.URL)
}

func (f *FakeOAuthServer) Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "fakeClientID",
		ClientSecret: "fakeClientSecret",
		Endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("%s/auth", f.s.URL),
			TokenURL: fmt.Sprintf("%s/token", f.s.URL),
		},
		RedirectURL: fmt.Sprintf("%s/redirect", f.s.URL),
		Scopes:      []string{"openid", "email", "profile"},
	}
}

func fakeTokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != FakeOAuthCode {
		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_grant"}`))
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{
		"access_token": "%s",
		"refresh_token": "refresh_token",
		"token_type": "bearer",
		"expires_in": 3600
	}`, fakeAccessToken)))
}

func fakeUserInfoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+fakeAccessToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"sub":   FakeOAuthSubject,
		"email": FakeOAuthEmail,
		"name":  FakeOAuthName,
	})
}
