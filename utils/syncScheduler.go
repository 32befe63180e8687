package utils

import (
	"lmsync/config"
	"lmsync/database"
	"lmsync/models"
	"lmsync/moodle"
	"lmsync/syncer"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[SYNC-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// runScheduledSync performs the nightly fleet sync and mails the summary.
func runScheduledSync() {
	logScheduler("Nightly fleet sync starting...")

	client := moodle.NewClient(
		config.AppConfig.MoodleBaseURL,
		config.AppConfig.MoodleToken,
		time.Duration(config.AppConfig.MoodleTimeoutSeconds)*time.Second,
	)
	service := syncer.NewService(
		database.Database.Db,
		client,
		time.Duration(config.AppConfig.SyncStudentDelayMs)*time.Millisecond,
		config.AppConfig.SyncBatchSize,
	)

	fleet, err := service.SyncAll(models.TriggerScheduled)
	if err != nil {
		logScheduler("Fleet sync failed: " + err.Error())
		return
	}

	logScheduler("Nightly fleet sync finished")

	if err := SendSyncReportEmail(fleet); err != nil {
		logScheduler("Failed to send sync report email: " + err.Error())
	}
}

// InitializeSyncScheduler starts the nightly re-sync cron.
func InitializeSyncScheduler() *cron.Cron {
	logScheduler("Initializing sync scheduler...")

	c := cron.New()

	if _, err := c.AddFunc(config.AppConfig.SyncCron, runScheduledSync); err != nil {
		logScheduler("Invalid SYNC_CRON expression, scheduler disabled: " + err.Error())
		return c
	}

	c.Start()

	logScheduler("Sync scheduler started with schedule: " + config.AppConfig.SyncCron)
	return c
}
