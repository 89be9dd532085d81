package model

import "time"

type NotificationType string

const (
	NOTIFY_MATCH_INVITATION    NotificationType = "match_invitation"
	NOTIFY_NEW_MATCH           NotificationType = "new_match"
	NOTIFY_MATCH_UPDATE        NotificationType = "match_update"
	NOTIFY_INVITATION_ACCEPTED NotificationType = "invitation_accepted"
	NOTIFY_INVITATION_DECLINED NotificationType = "invitation_declined"
)

type Notification struct {
	ID                  string           `json:"id"`
	UserID              string           `json:"user_id"`
	Type                NotificationType `json:"type"`
	Title               string           `json:"title"`
	Message             string           `json:"message"`
	Read                bool             `json:"read"`
	RelatedMatchID      string           `json:"related_match_id,omitempty"`
	RelatedInvitationID string           `json:"related_invitation_id,omitempty"`
	Created             time.Time        `json:"created_at"`

	RelatedMatch      *NotificationMatch      `json:"related_match,omitempty"`
	RelatedInvitation *NotificationInvitation `json:"related_invitation,omitempty"`
}

// NotificationMatch is the slice of a match shown next to a notification.
type NotificationMatch struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

type NotificationInvitation struct {
	ID     string           `json:"id"`
	Status InvitationStatus `json:"status"`
}
