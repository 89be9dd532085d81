package controller

import (
	"context"
	"sync"
	"time"

	"github.com/ETTyler/football/model"
	"github.com/ETTyler/football/notify"
	"github.com/rs/zerolog/log"
)

const (
	DefaultNotificationLimit     = 20
	MaxNotificationLimit         = 100
	DefaultNotificationRetention = 30 * 24 * time.Hour
)

// notify stores the notification and pushes it to any live connection of the
// recipient. Failures are logged and never fail the operation that caused them.
func (c *controller) notify(ctx context.Context, n *model.Notification) {
	if err := c.db.CreateNotification(ctx, n); err != nil {
		log.Warn().Err(err).Str("user", n.UserID).Str("type", string(n.Type)).Msg("error creating notification")
		return
	}
	c.hub.Publish(*n)
}

func (c *controller) ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}
	return c.db.ListNotifications(ctx, userID, limit)
}

func (c *controller) UnreadNotificationCount(ctx context.Context, userID string) int {
	count, err := c.db.UnreadNotificationCount(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("error counting unread notifications")
		return 0
	}
	return count
}

func (c *controller) MarkNotificationRead(ctx context.Context, userID, id string) error {
	return c.db.MarkNotificationRead(ctx, userID, id)
}

func (c *controller) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return c.db.MarkAllNotificationsRead(ctx, userID)
}

func (c *controller) DeleteNotification(ctx context.Context, userID, id string) error {
	return c.db.DeleteNotification(ctx, userID, id)
}

func (c *controller) SubscribeNotifications(userID string) *notify.Subscription {
	return c.hub.Subscribe(userID)
}

// PruneNotifications deletes read notifications older than the retention window.
func (c *controller) PruneNotifications(ctx context.Context) (int64, error) {
	before := c.clock.Now().Add(-c.retention)
	n, err := c.db.DeleteReadNotifications(ctx, before)
	if err != nil {
		return 0, err
	}
	log.Info().Int64("deleted", n).Time("before", before).Msg("pruned read notifications")
	return n, nil
}

func (c *controller) RunPeriodicNotificationCleanup(frequency time.Duration, shutdown chan bool, wg *sync.WaitGroup) {
	ticker := time.NewTicker(frequency)
	defer ticker.Stop()
	defer wg.Done()

	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := c.PruneNotifications(ctx); err != nil {
				log.Error().Err(err).Msg("error pruning notifications")
			}
			cancel()
		}
	}
}
