package model

import (
	"fmt"
	"strings"
	"time"
)

var DayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

type DayAvailability struct {
	DayOfWeek int    `json:"day_of_week"`
	Available bool   `json:"available"`
	DayName   string `json:"day_name"`
}

// WeekAvailability expands the stored per-day flags into all seven days.
// Days without a stored flag are available.
func WeekAvailability(stored map[int]bool) []DayAvailability {
	week := make([]DayAvailability, 0, len(DayNames))
	for i, name := range DayNames {
		available, found := stored[i]
		if !found {
			available = true
		}
		week = append(week, DayAvailability{DayOfWeek: i, Available: available, DayName: name})
	}
	return week
}

func ValidDayOfWeek(day int) bool {
	return day >= 0 && day < len(DayNames)
}

// DayOfWeek parses a YYYY-MM-DD calendar date in loc and returns its weekday,
// 0 for Sunday through 6 for Saturday.
func DayOfWeek(date string, loc *time.Location) (int, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateFormat, strings.TrimSpace(date), loc)
	if err != nil {
		return -1, fmt.Errorf("date must be in the YYYY-MM-DD format, got: %s", date)
	}
	return int(d.Weekday()), nil
}

// UserBuckets partitions user search results by availability on a target date.
// Every searched user is in exactly one bucket.
type UserBuckets struct {
	Available   []UserSearchResult `json:"available"`
	Unavailable []UserSearchResult `json:"unavailable"`
	Others      []UserSearchResult `json:"others"`
}

func EmptyBuckets() UserBuckets {
	return UserBuckets{
		Available:   []UserSearchResult{},
		Unavailable: []UserSearchResult{},
		Others:      []UserSearchResult{},
	}
}

func (b *UserBuckets) Len() int {
	return len(b.Available) + len(b.Unavailable) + len(b.Others)
}
