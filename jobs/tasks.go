package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAgeingWarmup pre-computes the ageing fact table into the cache.
	TaskAgeingWarmup = "ageing:warmup"
)

// AgeingWarmupPayload scopes a warmup run. An empty AsAt means today (UTC).
type AgeingWarmupPayload struct {
	AsAt string `json:"as_at,omitempty"`
}

// NewAgeingWarmupTask constructs an Asynq task for the warmup job.
func NewAgeingWarmupTask(asAt string) (*asynq.Task, error) {
	data, err := json.Marshal(AgeingWarmupPayload{AsAt: asAt})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAgeingWarmup, data), nil
}
