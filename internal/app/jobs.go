package app

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/georisk/internal/logging"
	"github.com/raysh454/georisk/internal/metrics"
	"github.com/raysh454/georisk/internal/model"
	"golang.org/x/sync/errgroup"
)

// ErrJobNotFound is returned for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	Processed int `json:"processed,omitempty"`
	Total     int `json:"total,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// BatchItem is the outcome of one request of a batch job. Exactly one of
// Assessment and Error is set once the item has run.
type BatchItem struct {
	Index      int               `json:"index"`
	Assessment *model.Assessment `json:"assessment,omitempty"`
	Error      string            `json:"error,omitempty"`
}

type Job struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Events    chan JobEvent `json:"-"`

	Items []BatchItem `json:"items,omitempty"`
}

type jobTable struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	cancels map[string]context.CancelFunc
}

func newJobTable() *jobTable {
	return &jobTable{
		jobs:    make(map[string]*Job),
		cancels: make(map[string]context.CancelFunc),
	}
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobs.mu.Lock()
	job, ok := o.jobs.jobs[jobID]
	o.jobs.mu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) updateJob(jobID string, fn func(j *Job)) {
	o.jobs.mu.Lock()
	defer o.jobs.mu.Unlock()
	if j, ok := o.jobs.jobs[jobID]; ok {
		fn(j)
	}
}

func (o *Orchestrator) setStatus(jobID string, status JobStatus, errMsg string) {
	o.updateJob(jobID, func(j *Job) {
		j.Status = status
		j.Error = errMsg
	})
	typ := JobEventStatus
	if status == JobDone {
		typ = JobEventResult
	}
	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: typ, Status: status, Error: errMsg})
}

// StartBatchJob assesses every request in the background with at most
// jobs.concurrency running at once. Each request draws from its own random
// source. Per-item failures are recorded on the item and do not fail the
// job; cancellation does.
func (o *Orchestrator) StartBatchJob(ctx context.Context, reqs []AssessmentRequest) (*Job, error) {
	if len(reqs) == 0 {
		return nil, errors.New("batch is empty")
	}

	jobID := uuid.New().String()
	job := &Job{
		ID:        jobID,
		Type:      "batch_assess",
		Status:    JobPending,
		Total:     len(reqs),
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, o.cfg.Jobs.EventBuffer),
		Items:     make([]BatchItem, len(reqs)),
	}
	for i := range job.Items {
		job.Items[i].Index = i
	}

	jobCtx, cancel := context.WithCancel(ctx)
	o.jobs.mu.Lock()
	o.jobs.jobs[jobID] = job
	o.jobs.cancels[jobID] = cancel
	o.jobs.mu.Unlock()

	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobPending})

	reqs = append([]AssessmentRequest(nil), reqs...)
	go o.runBatch(jobCtx, jobID, reqs)

	return job, nil
}

func (o *Orchestrator) runBatch(ctx context.Context, jobID string, reqs []AssessmentRequest) {
	metrics.JobsActive.Inc()
	logger := o.logger.With(logging.Field{Key: "job_id", Value: jobID})

	defer func() {
		metrics.JobsActive.Dec()
		o.jobs.mu.Lock()
		j := o.jobs.jobs[jobID]
		cancel := o.jobs.cancels[jobID]
		delete(o.jobs.cancels, jobID)
		if j != nil {
			j.EndedAt = time.Now().UTC()
			metrics.JobsFinished.WithLabelValues(string(j.Status)).Inc()
		}
		o.jobs.mu.Unlock()
		if cancel != nil {
			cancel()
		}

		// Close events channel so websocket loop can terminate cleanly
		if j != nil && j.Events != nil {
			close(j.Events)
		}
	}()

	o.setStatus(jobID, JobRunning, "")
	logger.Info("batch job started", logging.Field{Key: "total", Value: len(reqs)})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Jobs.Concurrency)

	for i := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := o.Assess(gctx, reqs[i])

			var processed, total int
			o.updateJob(jobID, func(j *Job) {
				if err != nil {
					j.Items[i].Error = err.Error()
				} else {
					j.Items[i].Assessment = a
				}
				j.Processed++
				processed, total = j.Processed, j.Total
			})
			if err != nil {
				logger.Warn("batch item failed",
					logging.Field{Key: "index", Value: i},
					logging.Field{Key: "error", Value: err.Error()})
			}
			o.emitJobEvent(jobID, JobEvent{
				JobID:     jobID,
				Type:      JobEventProgress,
				Processed: processed,
				Total:     total,
			})
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		o.setStatus(jobID, JobCanceled, err.Error())
		logger.Info("batch job canceled")
		return
	}
	o.setStatus(jobID, JobDone, "")
	logger.Info("batch job finished")
}

// CancelJob cancels a running job. Canceling a finished job is a no-op.
func (o *Orchestrator) CancelJob(jobID string) error {
	o.jobs.mu.Lock()
	_, ok := o.jobs.jobs[jobID]
	cancel := o.jobs.cancels[jobID]
	o.jobs.mu.Unlock()
	if !ok {
		return ErrJobNotFound
	}
	if cancel != nil {
		cancel()
	}
	return nil
}

// GetJob returns a snapshot of the job.
func (o *Orchestrator) GetJob(jobID string) (*Job, error) {
	o.jobs.mu.Lock()
	defer o.jobs.mu.Unlock()
	j, ok := o.jobs.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return snapshot(j), nil
}

// JobEvents returns the event channel of a job. The channel is closed when
// the job ends.
func (o *Orchestrator) JobEvents(jobID string) (<-chan JobEvent, error) {
	o.jobs.mu.Lock()
	defer o.jobs.mu.Unlock()
	j, ok := o.jobs.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return j.Events, nil
}

// ListJobs returns snapshots of all known jobs, most recent first.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobs.mu.Lock()
	defer o.jobs.mu.Unlock()
	out := make([]*Job, 0, len(o.jobs.jobs))
	for _, j := range o.jobs.jobs {
		out = append(out, snapshot(j))
	}
	slices.SortFunc(out, func(a, b *Job) int { return b.StartedAt.Compare(a.StartedAt) })
	return out
}

func snapshot(j *Job) *Job {
	cp := *j
	cp.Items = append([]BatchItem(nil), j.Items...)
	return &cp
}

// Shutdown cancels every running job and waits for them to finish or for
// ctx to expire.
func (o *Orchestrator) Shutdown(ctx context.Context) {
	o.jobs.mu.Lock()
	for _, cancel := range o.jobs.cancels {
		cancel()
	}
	o.jobs.mu.Unlock()

	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for {
		o.jobs.mu.Lock()
		running := len(o.jobs.cancels)
		o.jobs.mu.Unlock()
		if running == 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}
