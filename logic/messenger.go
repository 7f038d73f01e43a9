package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fedi_engine/dal"
	"fedi_engine/shared"
	"math/rand/v2"
	"time"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_messenger.go -package mocks fedi_engine/logic IMessenger

// IMessenger owns the outbound delivery queue.
type IMessenger interface {
	Enqueue(job *dal.DeliveryJob) error
	EnqueueActivity(senderId string, targets []DeliveryTarget, activity any) error
	EnqueueToFollowers(senderId string, activity any) error
	DrainOnce(ctx context.Context) (int, error)
	Run(ctx context.Context)
}

type DeliveryTarget struct {
	Inbox    string
	IsShared bool
}

const queueLoopIdleWakeSec = 5
const drainBatchSize = 100

type messenger struct {
	cfg            *shared.Config
	logger         shared.ILogger
	repo           dal.IRepo
	clock          shared.IClock
	processor      IDeliverProcessor
	metrics        IMetrics
	newJobsInQueue chan struct{}
	jitter         func(d time.Duration) time.Duration
}

func NewMessenger(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	clock shared.IClock,
	processor IDeliverProcessor,
	metrics IMetrics,
) IMessenger {
	return &messenger{
		cfg:            cfg,
		logger:         logger,
		repo:           repo,
		clock:          clock,
		processor:      processor,
		metrics:        metrics,
		newJobsInQueue: make(chan struct{}, 1),
		jitter:         randomJitter,
	}
}

// Up to 20% on top of d
func randomJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(d)/5 + 1))
}

// Backoff is the delay before the next attempt once attempts have failed: (2^attempts - 1) * base, capped.
func Backoff(attempts int, base, maxDelay time.Duration) time.Duration {
	if attempts <= 0 {
		return 0
	}
	if attempts > 30 {
		return maxDelay
	}
	delay := time.Duration((int64(1)<<attempts)-1) * base
	if delay > maxDelay || delay < 0 {
		return maxDelay
	}
	return delay
}

func (m *messenger) notify() {
	select {
	case m.newJobsInQueue <- struct{}{}:
	default:
	}
}

func (m *messenger) Enqueue(job *dal.DeliveryJob) error {
	now := m.clock.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.NextAttemptAt.IsZero() {
		job.NextAttemptAt = now
	}
	if job.Digest == "" {
		job.Digest = MakeDigest([]byte(job.Content))
	}
	if err := m.repo.AddDeliveryJob(job); err != nil {
		return err
	}
	m.notify()
	return nil
}

// EnqueueActivity serializes and digests the activity once, and queues it for each distinct inbox.
func (m *messenger) EnqueueActivity(senderId string, targets []DeliveryTarget, activity any) error {

	body, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	digest := MakeDigest(body)

	seen := make(map[string]struct{})
	for _, target := range targets {
		if target.Inbox == "" {
			continue
		}
		if _, exists := seen[target.Inbox]; exists {
			continue
		}
		seen[target.Inbox] = struct{}{}
		err = m.Enqueue(&dal.DeliveryJob{
			To:            target.Inbox,
			SenderId:      senderId,
			Content:       string(body),
			Digest:        digest,
			IsSharedInbox: target.IsShared,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *messenger) EnqueueToFollowers(senderId string, activity any) error {

	followers, err := m.repo.GetFollowerInboxes(senderId)
	if err != nil {
		return err
	}

	// Collect distinct shared inboxes
	var targets []DeliveryTarget
	for _, f := range followers {
		if f.SharedInbox != "" {
			targets = append(targets, DeliveryTarget{f.SharedInbox, true})
		} else {
			targets = append(targets, DeliveryTarget{f.Inbox, false})
		}
	}
	if len(targets) == 0 {
		return nil
	}
	return m.EnqueueActivity(senderId, targets, activity)
}

// DrainOnce processes every job that is due right now, one after the other.
func (m *messenger) DrainOnce(ctx context.Context) (int, error) {
	jobs, err := m.repo.GetDueDeliveryJobs(m.clock.Now(), drainBatchSize)
	if err != nil {
		return 0, err
	}
	for _, job := range jobs {
		outcome, err := m.processor.Process(ctx, job)
		m.finish(job, outcome, err)
	}
	m.processor.Wait()
	return len(jobs), nil
}

// finish records the result of one attempt: the job is either gone from the queue or rescheduled.
func (m *messenger) finish(job *dal.DeliveryJob, outcome string, err error) {

	remove := func() {
		if err := m.repo.DeleteDeliveryJob(job.Id); err != nil {
			m.logger.Errorf("Failed to remove job from queue: %d: %v", job.Id, err)
		}
	}

	if err == nil {
		m.logger.Debugf("Delivery to %s: %s", job.To, outcome)
		remove()
		return
	}
	if errors.Is(err, context.Canceled) {
		m.logger.Infof("Delivery to %s interrupted, keeping job %d as is", job.To, job.Id)
		return
	}
	if IsUnrecoverable(err) {
		m.logger.Warnf("Delivery to %s failed for good: %v", job.To, err)
		remove()
		return
	}

	attempts := job.Attempts + 1
	if attempts >= m.cfg.Delivery.MaxAttempts {
		m.logger.Warnf("Giving up delivery to %s after %d attempts: %v", job.To, attempts, err)
		remove()
		return
	}
	delay := Backoff(attempts,
		time.Second*time.Duration(m.cfg.Delivery.BackoffBaseSec),
		time.Second*time.Duration(m.cfg.Delivery.BackoffMaxSec))
	delay += m.jitter(delay)
	m.logger.Infof("Delivery to %s failed (attempt %d), retrying in %v: %v", job.To, attempts, delay, err)
	if err := m.repo.UpdateDeliveryJobAttempt(job.Id, attempts, m.clock.Now().Add(delay)); err != nil {
		m.logger.Errorf("Failed to reschedule job: %d: %v", job.Id, err)
	}
}

func (m *messenger) Run(ctx context.Context) {

	type result struct {
		job     *dal.DeliveryJob
		outcome string
		err     error
	}
	jobDone := make(chan result)
	inProgress := make(map[int64]struct{})
	maxParallel := m.cfg.Delivery.MaxParallelSends

	sendJobs := func() {
		if len(inProgress) >= maxParallel {
			return
		}
		// Jobs being sent are still in the queue, so ask for enough to skip them
		jobs, err := m.repo.GetDueDeliveryJobs(m.clock.Now(), maxParallel+len(inProgress))
		if err != nil {
			m.logger.Errorf("Failed to get delivery queue items: %v", err)
			return
		}
		if qlen, err := m.repo.GetDeliveryQueueLength(); err == nil {
			m.metrics.DeliveryQueueLength(qlen)
		}
		for _, job := range jobs {
			if len(inProgress) >= maxParallel {
				break
			}
			if _, busy := inProgress[job.Id]; busy {
				continue
			}
			inProgress[job.Id] = struct{}{}
			go func(job *dal.DeliveryJob) {
				outcome, err := m.processor.Process(ctx, job)
				jobDone <- result{job, outcome, err}
			}(job)
		}
	}

	for {
		select {
		case <-ctx.Done():
			// Let running sends report back so their jobs are not left half-finished
			for len(inProgress) > 0 {
				res := <-jobDone
				m.finish(res.job, res.outcome, res.err)
				delete(inProgress, res.job.Id)
			}
			m.processor.Wait()
			m.logger.Info("Delivery queue loop stopped")
			return
		case <-m.newJobsInQueue:
			m.logger.Debug("New jobs in queue")
			sendJobs()
		case <-time.After(queueLoopIdleWakeSec * time.Second):
			sendJobs()
		case res := <-jobDone:
			m.finish(res.job, res.outcome, res.err)
			delete(inProgress, res.job.Id)
			sendJobs()
		}
	}
}
