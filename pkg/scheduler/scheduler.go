package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/triptally/triptally/internal/proposal"
	"github.com/triptally/triptally/pkg/logger"
)

// Start wires the periodic jobs and starts the cron runner. The caller
// should Stop the returned cron on shutdown.
func Start(proposals *proposal.Service) *cron.Cron {
	c := cron.New()

	// Runs every 10 minutes — close polls whose end time has passed.
	// Votes on expired polls are also rejected inline, so this only
	// keeps listings honest between requests.
	_, err := c.AddFunc("*/10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		proposals.CloseExpiredPolls(ctx)
	})
	if err != nil {
		logger.Log.WithError(err).Error("failed to schedule poll expiry job")
	}

	c.Start()
	logger.Log.Info("scheduler started (poll expiry sweep every 10m)")
	return c
}
