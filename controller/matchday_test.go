package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ETTyler/football/db"
	"github.com/ETTyler/football/model"
	"github.com/ETTyler/football/testutils"
)

// Runs a full organize, invite and join cycle against a real database.
func TestMatchDay(t *testing.T) {
	ctx := context.Background()
	ctrl := controllerForTest(t, testDB.Clock, testDB.DB)

	organizer, err := ctrl.SignUp(ctx, "olivia.matchday@example.com", "password1", "Olivia Organizer")
	if err != nil {
		t.Fatalf("error signing up organizer: %v", err)
	}
	invitee, err := ctrl.SignUp(ctx, "ian.matchday@example.com", "password2", "Ian Invitee")
	if err != nil {
		t.Fatalf("error signing up invitee: %v", err)
	}
	walkOn, err := ctrl.SignUp(ctx, "wendy.matchday@example.com", "password3", "Wendy Walkon")
	if err != nil {
		t.Fatalf("error signing up walk on: %v", err)
	}

	if _, err := ctrl.SignUp(ctx, "OLIVIA.matchday@example.com", "password1", "Copy Cat"); !errors.Is(err, db.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken for a repeated email, got: %v", err)
	}
	if _, err := ctrl.SignIn(ctx, "olivia.matchday@example.com", "password1"); err != nil {
		t.Errorf("error signing in: %v", err)
	}

	// Wendy can't make Saturdays.
	if err := ctrl.SetUserAvailability(ctx, walkOn.ID, 6, false); err != nil {
		t.Fatalf("error setting availability: %v", err)
	}

	input := validInput()
	input.Date = "2024-03-09"
	input.MaxPlayers = 3
	created, err := ctrl.CreateMatch(ctx, organizer.ID, input, []string{invitee.ID}, "See you there")
	if err != nil {
		t.Fatalf("error creating match: %v", err)
	}
	m := created.Match
	if m.CurrentPlayers != 1 || len(created.Invites.Invited) != 1 || created.Invites.HasFailures() {
		t.Fatalf("created match not as expected: %+v", created)
	}

	// Only full names are searched so nobody matches the email address.
	buckets, err := ctrl.SearchInvitees(ctx, organizer.ID, m.ID, "matchday")
	if err != nil {
		t.Fatalf("error searching invitees: %v", err)
	}
	if buckets.Len() != 0 {
		t.Errorf("expected no invitees for an email search, got: %+v", buckets)
	}
	buckets, err = ctrl.SearchInvitees(ctx, organizer.ID, m.ID, "Walkon")
	if err != nil {
		t.Fatalf("error searching invitees: %v", err)
	}
	if len(buckets.Unavailable) != 1 || buckets.Unavailable[0].ID != walkOn.ID || len(buckets.Available) != 0 {
		t.Errorf("expected Wendy to be unavailable on Saturday, got: %+v", buckets)
	}
	buckets, err = ctrl.SearchInvitees(ctx, organizer.ID, m.ID, "Invitee")
	if err != nil {
		t.Fatalf("error searching invitees: %v", err)
	}
	if buckets.Len() != 0 {
		t.Errorf("expected the pending invitee to be excluded, got: %+v", buckets)
	}

	if unread := ctrl.UnreadNotificationCount(ctx, invitee.ID); unread != 1 {
		t.Errorf("expected 1 unread notification for the invitee, got %d", unread)
	}

	inv := created.Invites.Invited[0]
	if _, err := ctrl.RespondToInvitation(ctx, invitee.ID, inv.ID, model.INVITATION_ACCEPTED); err != nil {
		t.Fatalf("error accepting invitation: %v", err)
	}
	if _, err := ctrl.RespondToInvitation(ctx, invitee.ID, inv.ID, model.INVITATION_DECLINED); !errors.Is(err, db.ErrInvitationNotPending) {
		t.Errorf("expected ErrInvitationNotPending on a second answer, got: %v", err)
	}

	count, err := ctrl.JoinMatch(ctx, walkOn.ID, m.ID)
	if err != nil {
		t.Fatalf("error joining match: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 players, got %d", count)
	}
	latecomer, err := ctrl.SignUp(ctx, "lee.matchday@example.com", "password4", "Lee Latecomer")
	if err != nil {
		t.Fatalf("error signing up latecomer: %v", err)
	}
	if _, err := ctrl.JoinMatch(ctx, latecomer.ID, m.ID); !errors.Is(err, db.ErrMatchFull) {
		t.Errorf("expected ErrMatchFull, got: %v", err)
	}

	count, err = ctrl.LeaveMatch(ctx, walkOn.ID, m.ID)
	if err != nil || count != 2 {
		t.Errorf("expected 2 players after leaving, got %d, %v", count, err)
	}
	if _, err := ctrl.LeaveMatch(ctx, organizer.ID, m.ID); !errors.Is(err, ErrOrganizerCannotLeave) {
		t.Errorf("expected ErrOrganizerCannotLeave, got: %v", err)
	}

	notifications, err := ctrl.ListNotifications(ctx, organizer.ID, 0)
	if err != nil {
		t.Fatalf("error listing notifications: %v", err)
	}
	if len(notifications) != 1 || notifications[0].Type != model.NOTIFY_INVITATION_ACCEPTED {
		t.Errorf("expected an accepted notification for the organizer, got: %+v", notifications)
	}

	dash, err := ctrl.Dashboard(ctx, invitee.ID)
	if err != nil {
		t.Fatalf("error loading dashboard: %v", err)
	}
	if len(dash.Organized) != 0 || len(dash.Joined) != 1 || dash.Joined[0].ID != m.ID {
		t.Errorf("unexpected dashboard for the invitee: %+v", dash)
	}

	// Kick off has passed.
	testDB.Clock.Add(9 * 24 * time.Hour)
	if _, err := ctrl.JoinMatch(ctx, latecomer.ID, m.ID); !errors.Is(err, ErrMatchInPast) {
		t.Errorf("expected ErrMatchInPast, got: %v", err)
	}
	testDB.Clock.Set(testutils.TestStart)

	if err := ctrl.DeleteMatch(ctx, organizer.ID, m.ID); err != nil {
		t.Fatalf("error deleting match: %v", err)
	}
	if _, err := ctrl.GetMatch(ctx, m.ID); !errors.Is(err, db.ErrMatchNotFound) {
		t.Errorf("expected the match to be gone, got: %v", err)
	}
}
