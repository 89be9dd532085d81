package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ETTyler/football/model"
	"github.com/rs/zerolog/log"
)

const (
	MinSearchLength = 2
	UserSearchLimit = 10
)

type availabilityState int

const (
	stateUnknown availabilityState = iota
	stateAvailable
	stateUnavailable
)

// SearchUsersWithAvailability finds users by name and sorts them into buckets
// by their availability on targetDate. Users in exclude never appear. Without
// a readable target date every user lands in Others. Each user appears in
// exactly one bucket and search order is kept within a bucket.
func (c *controller) SearchUsersWithAvailability(ctx context.Context, query, targetDate string, exclude []string) model.UserBuckets {
	buckets := model.EmptyBuckets()

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchLength {
		return buckets
	}

	found, err := c.db.SearchUsers(ctx, query, exclude, UserSearchLimit)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("error searching users")
		return buckets
	}
	users := withoutExcluded(found, exclude)

	day := -1
	if strings.TrimSpace(targetDate) != "" {
		d, err := model.DayOfWeek(targetDate, c.location)
		if err != nil {
			log.Warn().Err(err).Str("date", targetDate).Msg("ignoring unreadable target date")
		} else {
			day = d
		}
	}
	if day < 0 {
		buckets.Others = append(buckets.Others, users...)
		return buckets
	}

	states := c.availabilityOn(ctx, users, day)
	for i, u := range users {
		switch states[i] {
		case stateAvailable:
			buckets.Available = append(buckets.Available, u)
		case stateUnavailable:
			buckets.Unavailable = append(buckets.Unavailable, u)
		default:
			buckets.Others = append(buckets.Others, u)
		}
	}
	return buckets
}

// availabilityOn looks up every user concurrently. states[i] belongs to users[i].
func (c *controller) availabilityOn(ctx context.Context, users []model.UserSearchResult, day int) []availabilityState {
	states := make([]availabilityState, len(users))

	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()

			days, err := c.db.GetUserAvailability(ctx, userID)
			if err != nil {
				log.Warn().Err(err).Str("user", userID).Msg("error reading availability")
				states[i] = stateUnknown
				return
			}
			// A day that was never set counts as available.
			if available, set := days[day]; set && !available {
				states[i] = stateUnavailable
			} else {
				states[i] = stateAvailable
			}
		}(i, u.ID)
	}
	wg.Wait()

	return states
}

// withoutExcluded drops excluded and repeated users while keeping order.
func withoutExcluded(users []model.UserSearchResult, exclude []string) []model.UserSearchResult {
	skip := make(map[string]bool, len(exclude)+len(users))
	for _, id := range exclude {
		skip[id] = true
	}

	result := make([]model.UserSearchResult, 0, len(users))
	for _, u := range users {
		if skip[u.ID] {
			continue
		}
		skip[u.ID] = true
		result = append(result, u)
	}
	return result
}

func (c *controller) GetUserAvailability(ctx context.Context, userID string) []model.DayAvailability {
	days, err := c.db.GetUserAvailability(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("error reading availability, using defaults")
		return model.WeekAvailability(nil)
	}
	return model.WeekAvailability(days)
}

func (c *controller) SetUserAvailability(ctx context.Context, userID string, day int, available bool) error {
	if !model.ValidDayOfWeek(day) {
		return ErrInvalidDay
	}
	return c.db.SetUserAvailability(ctx, userID, day, available)
}

func (c *controller) AvailableUsersForDate(ctx context.Context, date string) ([]model.UserSearchResult, error) {
	day, err := model.DayOfWeek(date, c.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return c.db.ListAvailableUsers(ctx, day)
}
