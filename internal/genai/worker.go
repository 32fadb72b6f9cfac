package genai

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/roadready/permitprep-backend/internal/config"
	"github.com/roadready/permitprep-backend/internal/pdftext"
	"github.com/roadready/permitprep-backend/internal/store"
)

const jobPollTimeout = 1 * time.Second

// Worker consumes generation jobs from the Redis queue, runs the
// extract-generate-admit pipeline, and commits the finished pool to the
// pool store. Generation is the only long-blocking operation in the
// system, so it runs here, off every request path, holding no session
// state while it waits on the network.
type Worker struct {
	rdb    *redis.Client
	gen    *Service
	pools  store.PoolStore
	log    zerolog.Logger
	jobTTL time.Duration
}

// NewWorker creates a generation Worker.
func NewWorker(rdb *redis.Client, gen *Service, pools store.PoolStore, log zerolog.Logger, jobTTL time.Duration) *Worker {
	return &Worker{
		rdb:    rdb,
		gen:    gen,
		pools:  pools,
		log:    log.With().Str("component", "generation_worker").Logger(),
		jobTTL: jobTTL,
	}
}

// Start blocks on the job queue until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Msg("GenerationWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("GenerationWorker stopped")
			return
		default:
			item, err := w.rdb.BLPop(ctx, jobPollTimeout, config.WorkerKey.GenerationJobsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			var p queuePayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid queue payload")
				continue
			}

			w.run(ctx, &p)
		}
	}
}

// run executes one job end to end. The uploaded file is removed when the
// job finishes, in either direction.
func (w *Worker) run(ctx context.Context, p *queuePayload) {
	defer os.Remove(p.FilePath)

	job, err := GetJob(ctx, w.rdb, p.JobID)
	if err != nil {
		w.log.Error().Err(err).Str("job_id", p.JobID).Msg("Job record missing")
		return
	}

	jobLog := w.log.With().Str("job_id", job.ID).Logger()
	jobLog.Info().Str("file", p.FilePath).Msg("Job started")

	w.transition(ctx, job, JobExtracting)

	data, err := os.ReadFile(p.FilePath)
	if err != nil {
		w.fail(ctx, job, jobLog, "reading upload failed", err)
		return
	}
	text, err := pdftext.ExtractBytes(data)
	if err != nil {
		w.fail(ctx, job, jobLog, "text extraction failed", err)
		return
	}

	w.transition(ctx, job, JobGenerating)

	questions, err := w.gen.GeneratePool(ctx, text, func(done, total int) {
		job.BatchesDone = done
		job.BatchesTotal = total
		_ = saveJob(ctx, w.rdb, job, w.jobTTL)
	})
	if err != nil {
		w.fail(ctx, job, jobLog, "generation failed", err)
		return
	}

	poolID := uuid.NewString()
	if err := w.pools.Put(ctx, poolID, questions); err != nil {
		w.fail(ctx, job, jobLog, "storing pool failed", err)
		return
	}

	job.State = JobCompleted
	job.PoolID = poolID
	job.PoolSize = len(questions)
	if err := saveJob(ctx, w.rdb, job, w.jobTTL); err != nil {
		jobLog.Error().Err(err).Msg("Failed to save completed job")
		return
	}
	jobLog.Info().Str("pool_id", poolID).Int("questions", len(questions)).Msg("Job completed")
}

func (w *Worker) transition(ctx context.Context, job *Job, state JobState) {
	job.State = state
	_ = saveJob(ctx, w.rdb, job, w.jobTTL)
}

func (w *Worker) fail(ctx context.Context, job *Job, log zerolog.Logger, msg string, err error) {
	log.Error().Err(err).Msg("Job failed: " + msg)
	job.State = JobFailed
	job.Error = msg + ": " + err.Error()
	_ = saveJob(ctx, w.rdb, job, w.jobTTL)
}
