package controller

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ETTyler/football/db"
	"github.com/ETTyler/football/db/mockdb"
	"github.com/ETTyler/football/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestSignUp(t *testing.T) {
	tests := map[string]struct {
		email    string
		password string
		name     string
		dbErr    error
		exEmail  string
		err      error
	}{
		"valid":          {email: " Sam.Striker@Example.com ", password: "secret1", name: " Sam Striker ", exEmail: "sam.striker@example.com"},
		"bad email":      {email: "not-an-email", password: "secret1", name: "Sam", err: errors.New("invalid input: email address is not valid")},
		"display name":   {email: "Bob <bob@example.com>", password: "secret1", name: "Bob", err: errors.New("invalid input: email address is not valid")},
		"angle address":  {email: "<bob@example.com>", password: "secret1", name: "Bob", err: errors.New("invalid input: email address is not valid")},
		"long password":  {email: "sam@example.com", password: strings.Repeat("x", 73), name: "Sam", err: errors.New("invalid input: password must be at most 72 bytes")},
		"short password": {email: "sam@example.com", password: "12345", name: "Sam", err: errors.New("invalid input: password must be at least 6 characters")},
		"no name":        {email: "sam@example.com", password: "secret1", name: "  ", err: errors.New("invalid input: full name is required")},
		"email taken":    {email: "sam@example.com", password: "secret1", name: "Sam", exEmail: "sam@example.com", dbErr: db.ErrEmailTaken, err: db.ErrEmailTaken},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			mockDB := &mockdb.DB{}
			ctrl := controllerForTest(t, mockClock(), mockDB)

			if tc.exEmail != "" {
				mockDB.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.Email == tc.exEmail
				})).Return(tc.dbErr).Run(func(args mock.Arguments) {
					args.Get(1).(*model.User).ID = "u1"
				})
			}

			u, err := ctrl.SignUp(context.Background(), tc.email, tc.password, tc.name)
			if !errorsEqual(err, tc.err) {
				t.Fatalf("unexpected err value, wanted: '%v', got: '%v'", tc.err, err)
			}
			mockDB.AssertExpectations(t)
			if err != nil {
				if u != nil {
					t.Errorf("expected no user on error")
				}
				return
			}

			if u.ID != "u1" || u.FullName != "Sam Striker" || u.Email != tc.exEmail {
				t.Errorf("user not as expected: %+v", u)
			}
			if u.PasswordHash == tc.password {
				t.Errorf("password was stored without hashing")
			}
			if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(tc.password)); err != nil {
				t.Errorf("stored hash does not match the password: %v", err)
			}
		})
	}
}

func TestSignUp_invalidInputIsWrapped(t *testing.T) {
	ctrl := controllerForTest(t, mockClock(), &mockdb.DB{})

	_, err := ctrl.SignUp(context.Background(), "bad", "secret1", "Sam")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got: %v", err)
	}
}

func TestSignIn(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("error hashing password: %v", err)
	}
	user := &model.User{ID: "u1", FullName: "Sam", Email: "sam@example.com", PasswordHash: string(hash)}
	oauthUser := &model.User{ID: "u2", FullName: "Olly", Email: "olly@example.com", OAuthSubject: "sub"}
	dbErr := errors.New("connection refused")

	tests := map[string]struct {
		email    string
		password string
		found    *model.User
		dbErr    error
		err      error
	}{
		"valid":          {email: " SAM@example.com", password: "correct horse", found: user},
		"wrong password": {email: "sam@example.com", password: "wrong", found: user, err: ErrInvalidCredentials},
		"unknown email":  {email: "nobody@example.com", password: "x", dbErr: db.ErrUserNotFound, err: ErrInvalidCredentials},
		"oauth only":     {email: "olly@example.com", password: "", found: oauthUser, err: ErrInvalidCredentials},
		"db error":       {email: "sam@example.com", password: "x", dbErr: dbErr, err: dbErr},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			mockDB := &mockdb.DB{}
			ctrl := controllerForTest(t, mockClock(), mockDB)
			mockDB.On("GetUserByEmail", mock.Anything, normalizeEmail(tc.email)).Return(tc.found, tc.dbErr)

			u, err := ctrl.SignIn(context.Background(), tc.email, tc.password)
			if !errors.Is(err, tc.err) {
				t.Fatalf("unexpected err value, wanted: '%v', got: '%v'", tc.err, err)
			}
			if tc.err == nil && u.ID != user.ID {
				t.Errorf("wrong user returned: %+v", u)
			}
			mockDB.AssertExpectations(t)
		})
	}
}

func TestSessions(t *testing.T) {
	clock := mockClock()
	mockDB := &mockdb.DB{}
	ctrl := controllerForTest(t, clock, mockDB)
	ctx := context.Background()

	user := &model.User{ID: "u1", FullName: "Sam"}
	mockDB.On("GetUser", mock.Anything, "u1").Return(user, nil)

	s, err := ctrl.IssueSession(user)
	if err != nil {
		t.Fatalf("error issuing session: %v", err)
	}
	if !s.Expires.Equal(clock.Now().Add(SessionDuration)) {
		t.Errorf("unexpected expiry: %v", s.Expires)
	}

	u, err := ctrl.VerifySession(ctx, s.Token)
	if err != nil {
		t.Fatalf("error verifying fresh session: %v", err)
	}
	if u.ID != "u1" {
		t.Errorf("wrong user for session: %+v", u)
	}

	clock.Add(SessionDuration + time.Minute)
	if _, err := ctrl.VerifySession(ctx, s.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected expired session to be rejected, got: %v", err)
	}
}

func TestVerifySession_rejected(t *testing.T) {
	clock := mockClock()
	mockDB := &mockdb.DB{}
	ctrl := controllerForTest(t, clock, mockDB)

	other := controllerWith(t, clock, mockDB, nil, Config{JWTSecret: []byte("another-secret")})
	forged, err := other.IssueSession(&model.User{ID: "u1"})
	if err != nil {
		t.Fatalf("error issuing session: %v", err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": "u1", "iss": sessionIssuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("error creating unsigned token: %v", err)
	}

	deleted, err := ctrl.IssueSession(&model.User{ID: "gone"})
	if err != nil {
		t.Fatalf("error issuing session: %v", err)
	}
	mockDB.On("GetUser", mock.Anything, "gone").Return(nil, db.ErrUserNotFound)

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"wrong secret": forged.Token,
		"alg none":     noneToken,
		"user deleted": deleted.Token,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ctrl.VerifySession(context.Background(), token); !errors.Is(err, ErrInvalidSession) {
				t.Errorf("expected ErrInvalidSession, got: %v", err)
			}
		})
	}
}

func TestIssueSession_noUser(t *testing.T) {
	ctrl := controllerForTest(t, mockClock(), &mockdb.DB{})
	if _, err := ctrl.IssueSession(nil); err == nil {
		t.Errorf("expected an error issuing a session for no user")
	}
	if _, err := ctrl.IssueSession(&model.User{}); err == nil {
		t.Errorf("expected an error issuing a session for a user without an id")
	}
}
