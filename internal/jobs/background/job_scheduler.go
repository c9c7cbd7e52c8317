package background

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"bizgate/internal/repositories"
	"bizgate/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

const (
	archiveBucket    = "auth-events-archive"
	archiveBatchSize = 1000
	// Events older than this are swept out of Postgres into object storage.
	archiveCutoff = "30 days"
)

// JobScheduler manages background jobs for distributed environment.
// Refresh-token rows are deliberately not on any purge schedule: revoked and
// expired rows stay in Postgres so the replaced_by_hash chain survives.
type JobScheduler struct {
	scheduler        gocron.Scheduler
	oneTimeTokenRepo repositories.OneTimeTokenRepository
	authEventsRepo   repositories.AuthEventsRepository
	archive          services.ArchiveStorage
	jobs             map[string]gocron.Job
}

// NewJobScheduler creates a new job scheduler. The archive storage may be nil
// when object storage is not configured; the archival job is skipped then.
func NewJobScheduler(oneTimeTokenRepo repositories.OneTimeTokenRepository,
	authEventsRepo repositories.AuthEventsRepository,
	archive services.ArchiveStorage) *JobScheduler {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:        scheduler,
		oneTimeTokenRepo: oneTimeTokenRepo,
		authEventsRepo:   authEventsRepo,
		archive:          archive,
		jobs:             make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// One-time token purge - every hour
	oneTimeJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.purgeExpiredOneTimeTokens),
		gocron.WithName("one-time-token-purge"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create one-time token purge job: %v", err)
	} else {
		js.jobs["one-time-token-purge"] = oneTimeJob
	}

	// Auth event archival - every 24 hours
	if js.archive != nil {
		archiveJob, err := js.scheduler.NewJob(
			gocron.DurationJob(24*time.Hour),
			gocron.NewTask(js.archiveAuthEvents),
			gocron.WithName("auth-event-archival"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			log.Printf("Failed to create auth event archival job: %v", err)
		} else {
			js.jobs["auth-event-archival"] = archiveJob
		}
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// purgeExpiredOneTimeTokens deletes used and expired one-time tokens. Expired
// rows stay around for a grace day so support can still see recent attempts.
func (js *JobScheduler) purgeExpiredOneTimeTokens() error {
	log.Printf("Starting one-time token purge")

	deleted, err := js.oneTimeTokenRepo.DeleteExpired(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		log.Printf("Failed to purge one-time tokens: %v", err)
		return err
	}

	log.Printf("One-time token purge completed, removed %d rows", deleted)
	return nil
}

// archiveAuthEvents moves aged auth events into object storage in batches and
// marks the rows archived.
func (js *JobScheduler) archiveAuthEvents() error {
	ctx := context.Background()
	log.Printf("Starting auth event archival")

	if err := js.archive.EnsureBucketExists(ctx, archiveBucket); err != nil {
		log.Printf("Failed to ensure archive bucket: %v", err)
		return err
	}

	total := 0
	for {
		events, err := js.authEventsRepo.ListUnarchivedBefore(ctx, archiveCutoff, archiveBatchSize)
		if err != nil {
			log.Printf("Failed to list auth events for archival: %v", err)
			return err
		}
		if len(events) == 0 {
			break
		}

		payload, err := json.Marshal(events)
		if err != nil {
			log.Printf("Failed to encode auth events batch: %v", err)
			return err
		}

		objectName := fmt.Sprintf("events/%s/%s.json", time.Now().UTC().Format("2006-01-02"), uuid.New().String())
		if err := js.archive.Upload(ctx, archiveBucket, objectName, bytes.NewReader(payload), int64(len(payload))); err != nil {
			log.Printf("Failed to upload auth events batch: %v", err)
			return err
		}

		ids := make([]uuid.UUID, 0, len(events))
		for _, event := range events {
			ids = append(ids, event.ID)
		}
		if err := js.authEventsRepo.MarkArchived(ctx, ids); err != nil {
			log.Printf("Failed to mark auth events archived: %v", err)
			return err
		}

		total += len(events)
		if len(events) < archiveBatchSize {
			break
		}
	}

	log.Printf("Auth event archival completed, archived %d events", total)
	return nil
}
