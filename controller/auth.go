package controller

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/ETTyler/football/db"
	"github.com/ETTyler/football/model"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionDuration   = 24 * time.Hour
	MinPasswordLength = 6
	// bcrypt only reads the first 72 bytes.
	MaxPasswordBytes  = 72
	sessionIssuer     = "matchhub"
)

type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (c *controller) SignUp(ctx context.Context, email, password, fullName string) (*model.User, error) {
	email = normalizeEmail(email)
	fullName = strings.TrimSpace(fullName)

	// Only a bare address is accepted, not "Name <address>".
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return nil, fmt.Errorf("%w: email address is not valid", ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, MaxPasswordBytes)
	}
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u := &model.User{
		FullName:     fullName,
		Email:        addr.Address,
		PasswordHash: string(hash),
	}
	if err := c.db.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *controller) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	u, err := c.db.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, db.ErrUserNotFound) {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}
	// OAuth users have no password to compare against.
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (c *controller) IssueSession(u *model.User) (*model.Session, error) {
	if u == nil || u.ID == "" {
		return nil, errors.New("cannot issue a session without a user")
	}

	now := c.clock.Now()
	expires := now.Add(SessionDuration)
	claims := sessionClaims{
		UserID: u.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("error signing session token: %w", err)
	}
	return &model.Session{Token: token, Expires: expires, User: u}, nil
}

func (c *controller) VerifySession(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.clock.Now))
	if err != nil || claims.UserID == "" {
		return nil, ErrInvalidSession
	}

	u, err := c.db.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	return u, nil
}

func (c *controller) GetUser(ctx context.Context, id string) (*model.User, error) {
	return c.db.GetUser(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
