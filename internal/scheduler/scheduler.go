package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/lewlew/lewlew-server/internal/services"
)

// StartPostPurge runs the expired-post purge on an hourly tick until done is
// closed. Posts stay soft-visible as "expired" for the purge window so
// moderation has time to act, then the rows go away for good.
func StartPostPurge(posts *services.PostService, purgeAfter time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		runPurge(posts, purgeAfter)
		for {
			select {
			case <-ticker.C:
				runPurge(posts, purgeAfter)
			case <-done:
				return
			}
		}
	}()
}

func runPurge(posts *services.PostService, purgeAfter time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	purged, err := posts.PurgeExpired(ctx, purgeAfter)
	if err != nil {
		slog.Error("post purge failed", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("purged expired posts", "count", purged)
	}
}
