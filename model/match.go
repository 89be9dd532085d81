package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateFormat = time.DateOnly
	TimeFormat = "15:04"
)

type PitchType string

const (
	PITCH_UNKNOWN PitchType = ""
	PITCH_5       PitchType = "5-a-side"
	PITCH_6       PitchType = "6-a-side"
	PITCH_7       PitchType = "7-a-side"
	PITCH_11      PitchType = "11-a-side"
)

func ParsePitchType(s string) PitchType {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "5-a-side", "5":
		return PITCH_5
	case "6-a-side", "6":
		return PITCH_6
	case "7-a-side", "7":
		return PITCH_7
	case "11-a-side", "11":
		return PITCH_11
	default:
		return PITCH_UNKNOWN
	}
}

type Match struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Location       string    `json:"location"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	PitchType      PitchType `json:"pitch_type"`
	Pricing        float64   `json:"pricing"`
	MaxPlayers     int       `json:"max_players"`
	CurrentPlayers int       `json:"current_players"`
	Notes          string    `json:"notes,omitempty"`
	OrganizerID    string    `json:"organizer_id"`
	Organizer      *User     `json:"organizer,omitempty"`
	Created        time.Time `json:"created_at"`
	Updated        time.Time `json:"updated_at"`
}

// MatchInput carries the editable fields of a match from a create or edit form.
type MatchInput struct {
	Title      string    `json:"title"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Location   string    `json:"location"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	PitchType  PitchType `json:"pitch_type"`
	Pricing    float64   `json:"pricing"`
	MaxPlayers int       `json:"max_players"`
	Notes      string    `json:"notes,omitempty"`
}

func (m *Match) IsFull() bool {
	return m.CurrentPlayers >= m.MaxPlayers
}

func (m *Match) SpotsLeft() int {
	if m.IsFull() {
		return 0
	}
	return m.MaxPlayers - m.CurrentPlayers
}

// StartsAt combines the match date and kick-off time in the given location.
func (m *Match) StartsAt(loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateFormat, m.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid match date '%s': %w", m.Date, err)
	}

	t, err := time.Parse(TimeFormat, FormatTime(m.Time))
	if err != nil {
		return d, nil
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// IsPast reports whether the match kicked off before now. A match with an
// unreadable date is never considered past.
func (m *Match) IsPast(now time.Time) bool {
	start, err := m.StartsAt(now.Location())
	if err != nil {
		return false
	}
	return start.Before(now)
}

// FormatTime trims a "hh:mm:ss" or "h:m" time to "hh:mm". Anything without a
// colon is returned unchanged.
func FormatTime(s string) string {
	if s == "" {
		return ""
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return s
	}
	return padTwo(parts[0]) + ":" + padTwo(parts[1])
}

func padTwo(s string) string {
	if len(s) < 2 {
		return strings.Repeat("0", 2-len(s)) + s
	}
	return s
}

type DateFilter string

const (
	DATES_ALL       DateFilter = "all"
	DATES_UPCOMING  DateFilter = "upcoming"
	DATES_TODAY     DateFilter = "today"
	DATES_THIS_WEEK DateFilter = "this-week"
)

func ParseDateFilter(s string) DateFilter {
	switch DateFilter(strings.ToLower(strings.TrimSpace(s))) {
	case DATES_UPCOMING:
		return DATES_UPCOMING
	case DATES_TODAY:
		return DATES_TODAY
	case DATES_THIS_WEEK:
		return DATES_THIS_WEEK
	default:
		return DATES_ALL
	}
}

type MatchFilter struct {
	Dates     DateFilter
	PitchType PitchType
	Search    string
	// Resolved by the controller from Dates and the current time. Empty means unbounded.
	From string
	To   string
}

type Participant struct {
	ID       string    `json:"id"`
	MatchID  string    `json:"match_id"`
	UserID   string    `json:"user_id"`
	FullName string    `json:"full_name"`
	Joined   time.Time `json:"joined_at"`
}

// Dashboard is the view of a single user's matches.
type Dashboard struct {
	Organized []Match `json:"organized"`
	Joined    []Match `json:"joined"`
}
