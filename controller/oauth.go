package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ETTyler/football/db"
	"github.com/ETTyler/football/model"
	"github.com/google/uuid"
)

const oauthStateExpiry = 5 * time.Minute

// Standard OpenID Connect userinfo claims.
type userInfo struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

func (c *controller) OAuthStart() (string, error) {
	if c.oauthConfig == nil {
		return "", ErrOAuthNotConfigured
	}

	state := uuid.NewString()

	c.oauthMu.Lock()
	defer c.oauthMu.Unlock()
	c.pruneOAuthStates()
	c.oauthStates[state] = c.clock.Now().Add(oauthStateExpiry)

	return c.oauthConfig.AuthCodeURL(state), nil
}

func (c *controller) OAuthSignIn(ctx context.Context, state, code string) (*model.User, error) {
	if c.oauthConfig == nil {
		return nil, ErrOAuthNotConfigured
	}
	if !c.consumeOAuthState(state) {
		return nil, ErrInvalidOAuthState
	}

	token, err := c.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("error exchanging code: %w", err)
	}

	info, err := c.fetchUserInfo(ctx, c.oauthConfig.Client(ctx, token))
	if err != nil {
		return nil, err
	}

	u, err := c.db.GetUserByOAuthSubject(ctx, info.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		return nil, err
	}

	u = &model.User{
		FullName:     strings.TrimSpace(info.Name),
		Email:        normalizeEmail(info.Email),
		OAuthSubject: info.Subject,
	}
	if u.FullName == "" {
		u.FullName = strings.Split(u.Email, "@")[0]
	}
	if err := c.db.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *controller) fetchUserInfo(ctx context.Context, client *http.Client) (*userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating userinfo request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error requesting userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected userinfo status code: %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("error parsing userinfo: %w", err)
	}
	if info.Subject == "" {
		return nil, errors.New("userinfo response has no subject")
	}
	return &info, nil
}

// A state can only be used once.
func (c *controller) consumeOAuthState(state string) bool {
	c.oauthMu.Lock()
	defer c.oauthMu.Unlock()

	expiry, ok := c.oauthStates[state]
	if !ok {
		return false
	}
	delete(c.oauthStates, state)
	return !c.clock.Now().After(expiry)
}

// Must be called with oauthMu held.
func (c *controller) pruneOAuthStates() {
	now := c.clock.Now()
	for s, expiry := range c.oauthStates {
		if now.After(expiry) {
			delete(c.oauthStates, s)
		}
	}
}
