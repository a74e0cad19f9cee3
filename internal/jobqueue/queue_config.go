/*
Package jobqueue configuration - tunable parameters for the River job queue.

Share-post generation is cheap (one model call with a local fallback), so the
defaults favor a small worker pool with a short retry horizon. Failed jobs
retain their error information in the River jobs table.
*/
package jobqueue

import (
	"os"
	"time"

	"github.com/riverqueue/river"
)

// QueueConfig holds all configurable parameters for the job queue.
type QueueConfig struct {
	// MaxWorkers is the number of concurrent workers processing jobs.
	MaxWorkers int

	// MaxRetries is the maximum retry attempts per job.
	MaxRetries int

	// JobTimeout is the maximum time a single job can run.
	JobTimeout time.Duration
}

// DefaultQueueConfig returns the default configuration.
func DefaultQueueConfig() *QueueConfig {
	return &QueueConfig{
		MaxWorkers: 5,
		MaxRetries: 10,
		JobTimeout: 2 * time.Minute,
	}
}

// ProductionQueueConfig returns a configuration for production use.
func ProductionQueueConfig() *QueueConfig {
	config := DefaultQueueConfig()
	config.MaxWorkers = 10
	config.MaxRetries = 25
	return config
}

// DevelopmentQueueConfig returns a configuration for development.
func DevelopmentQueueConfig() *QueueConfig {
	config := DefaultQueueConfig()
	config.MaxWorkers = 2
	config.MaxRetries = 3
	config.JobTimeout = 30 * time.Second
	return config
}

// GetQueueConfig returns the configuration for the current environment.
func GetQueueConfig() *QueueConfig {
	switch os.Getenv("APP_ENV") {
	case "production":
		return ProductionQueueConfig()
	case "development":
		return DevelopmentQueueConfig()
	default:
		return DefaultQueueConfig()
	}
}

// RiverQueueConfig converts our config to River's queue configuration format.
func (c *QueueConfig) RiverQueueConfig() map[string]river.QueueConfig {
	return map[string]river.QueueConfig{
		river.QueueDefault: {
			MaxWorkers: c.MaxWorkers,
		},
	}
}
