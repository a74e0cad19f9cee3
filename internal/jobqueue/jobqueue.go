/*
Package jobqueue provides a River-based job queue for background share-post
generation.

For configuration and tuning parameters, see queue_config.go.
*/
package jobqueue

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/rs/zerolog/log"

	"github.com/mppise/eaappreciate/pkg/models"
)

// PostGenerator produces a shareable post for a stored accomplishment.
type PostGenerator interface {
	GenerateShareablePost(ctx context.Context, acc models.Accomplishment) string
}

// AccomplishmentStore is the slice of the storage layer the worker needs.
type AccomplishmentStore interface {
	Get(ctx context.Context, id string) (*models.Accomplishment, error)
	SetSharedPost(ctx context.Context, id, post string) error
}

// SharePostArgs represents the arguments for a share-post generation job.
type SharePostArgs struct {
	AccomplishmentID string `json:"accomplishment_id"`
}

// Kind returns the job kind for River.
func (SharePostArgs) Kind() string {
	return "share_post"
}

// SharePostWorker generates and persists shareable posts.
type SharePostWorker struct {
	river.WorkerDefaults[SharePostArgs]
	gen   PostGenerator
	store AccomplishmentStore
}

// Work loads the accomplishment, generates its post, and stores the result.
// Post generation itself never fails (the generator falls back locally), so
// the only retryable failures here are storage ones.
func (w *SharePostWorker) Work(ctx context.Context, job *river.Job[SharePostArgs]) error {
	args := job.Args

	log.Info().
		Str("accomplishment_id", args.AccomplishmentID).
		Int("attempt", job.Attempt).
		Msg("Processing share post job")

	acc, err := w.store.Get(ctx, args.AccomplishmentID)
	if err != nil {
		return fmt.Errorf("failed to load accomplishment %s: %w", args.AccomplishmentID, err)
	}

	post := w.gen.GenerateShareablePost(ctx, *acc)

	if err := w.store.SetSharedPost(ctx, acc.ID, post); err != nil {
		return fmt.Errorf("failed to store shared post for %s: %w", acc.ID, err)
	}

	log.Info().
		Str("accomplishment_id", acc.ID).
		Msg("Share post generated and stored")
	return nil
}

// JobQueue manages the River job queue.
type JobQueue struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	config *QueueConfig
}

// NewJobQueue creates a job queue backed by the given database.
func NewJobQueue(databaseURL string, gen PostGenerator, store AccomplishmentStore) (*JobQueue, error) {
	config := GetQueueConfig()

	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &SharePostWorker{gen: gen, store: store})

	client, err := river.NewClient(riverpgxv5.New(pool), riverConfig(config, workers))
	if err != nil {
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &JobQueue{
		client: client,
		pool:   pool,
		config: config,
	}, nil
}

// riverConfig maps our queue tuning onto River's client configuration. The
// retry and timeout limits are enforced by River itself, per job.
func riverConfig(config *QueueConfig, workers *river.Workers) *river.Config {
	return &river.Config{
		Queues:      config.RiverQueueConfig(),
		Workers:     workers,
		MaxAttempts: config.MaxRetries,
		JobTimeout:  config.JobTimeout,
	}
}

// Start starts the job queue workers.
func (jq *JobQueue) Start(ctx context.Context) error {
	return jq.client.Start(ctx)
}

// Stop stops the job queue workers and closes the pool.
func (jq *JobQueue) Stop(ctx context.Context) error {
	err := jq.client.Stop(ctx)
	jq.pool.Close()
	return err
}

// QueueSharePostJob queues a share-post generation job for an accomplishment.
func (jq *JobQueue) QueueSharePostJob(ctx context.Context, accomplishmentID string) error {
	args := SharePostArgs{AccomplishmentID: accomplishmentID}

	_, err := jq.client.Insert(ctx, args, nil)
	if err != nil {
		return fmt.Errorf("failed to queue share post job: %w", err)
	}

	return nil
}
