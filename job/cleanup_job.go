// Package jobs runs background maintenance tasks.
package jobs

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rotzmediagroup/storypixie-admin/repositories"
)

const (
	activityRetention   = 90 * 24 * time.Hour
	cleanupInterval     = 24 * time.Hour
	cleanupBatchSize    = 500
	pauseBetweenBatches = time.Second
)

// StartActivityCleanupJob prunes activity log entries past the retention
// window, in batches so a large backlog never holds a long transaction.
func StartActivityCleanupJob(repo repositories.ActivityRepository) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		logrus.Info("[JOB] Starting activity log cleanup...")

		cutoff := time.Now().Add(-activityRetention)
		var total int64
		for {
			deleted, err := repo.DeleteOlderThan(cutoff, cleanupBatchSize)
			if err != nil {
				logrus.Error("[JOB] Error pruning activity log: ", err)
				break
			}
			total += deleted
			if deleted < cleanupBatchSize {
				break
			}
			time.Sleep(pauseBetweenBatches)
		}

		logrus.WithFields(logrus.Fields{
			"deleted": total,
		}).Info("[JOB] Activity log cleanup finished")
	}
}
