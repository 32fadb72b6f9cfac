package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/roadready/permitprep-backend/internal/config"
)

// JobState enumerates a generation job's lifecycle.
type JobState string

const (
	JobQueued     JobState = "QUEUED"
	JobExtracting JobState = "EXTRACTING"
	JobGenerating JobState = "GENERATING"
	JobCompleted  JobState = "COMPLETED"
	JobFailed     JobState = "FAILED"
)

// ErrJobNotFound is returned when a job ID is unknown or expired.
var ErrJobNotFound = errors.New("generation job not found")

// Job tracks one document-to-pool generation run. The job record lives in
// Redis under a TTL and is also published on the job's event channel after
// every change, so watchers see progress live.
type Job struct {
	ID           string   `json:"id"`
	State        JobState `json:"state"`
	BatchesDone  int      `json:"batches_done"`
	BatchesTotal int      `json:"batches_total"`
	// PoolID is set once the run completes; the pool itself lives in the
	// pool store under this ID.
	PoolID    string    `json:"pool_id,omitempty"`
	PoolSize  int       `json:"pool_size,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Done reports whether the job has reached a terminal state.
func (j *Job) Done() bool {
	return j.State == JobCompleted || j.State == JobFailed
}

// queuePayload is what travels through the worker queue: the job plus
// where the uploaded document was parked.
type queuePayload struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
}

// Enqueue creates a QUEUED job for the uploaded document and pushes it
// onto the worker queue.
func Enqueue(ctx context.Context, rdb *redis.Client, filePath string, ttl time.Duration) (*Job, error) {
	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		State:     JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := saveJob(ctx, rdb, job, ttl); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(queuePayload{JobID: job.ID, FilePath: filePath})
	if err != nil {
		return nil, fmt.Errorf("encode queue payload: %w", err)
	}
	if err := rdb.RPush(ctx, config.WorkerKey.GenerationJobsQueue, payload).Err(); err != nil {
		return nil, fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}
	return job, nil
}

// GetJob loads a job record by ID.
func GetJob(ctx context.Context, rdb *redis.Client, id string) (*Job, error) {
	raw, err := rdb.Get(ctx, config.CacheKey.GenerationJobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}

	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

// saveJob persists the job record and broadcasts it on the job's event
// channel.
func saveJob(ctx context.Context, rdb *redis.Client, job *Job, ttl time.Duration) error {
	job.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	if err := rdb.Set(ctx, config.CacheKey.GenerationJobKey(job.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}

	// Publish failures are not fatal; poll via GetJob still works.
	if err := rdb.Publish(ctx, config.CacheKey.GenerationEventsChannel(job.ID), raw).Err(); err != nil {
		return nil
	}
	return nil
}
