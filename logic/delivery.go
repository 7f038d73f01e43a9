package logic

import (
	"context"
	"errors"
	"fedi_engine/dal"
	"fedi_engine/shared"
	"fmt"
	"net/http"
	"sync"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_deliver_processor.go -package mocks fedi_engine/logic IDeliverProcessor

const (
	DeliveryOk            = "ok"
	DeliverySkipBlocked   = "skip (blocked)"
	DeliverySkipSuspended = "skip (suspended)"
	deliveryRetry         = "retry"
	deliveryUnrecoverable = "unrecoverable"
)

// UnrecoverableError tells the queue to drop the job instead of retrying it.
type UnrecoverableError struct {
	Err error
}

func (e *UnrecoverableError) Error() string {
	return "unrecoverable: " + e.Err.Error()
}

func (e *UnrecoverableError) Unwrap() error {
	return e.Err
}

func IsUnrecoverable(err error) bool {
	var unrecoverable *UnrecoverableError
	return errors.As(err, &unrecoverable)
}

type IDeliverProcessor interface {
	// Process sends one job. A nil error means done; an UnrecoverableError means drop; anything else means retry.
	Process(ctx context.Context, job *dal.DeliveryJob) (string, error)
	// Wait blocks until background instance bookkeeping has finished.
	Wait()
}

type deliverProcessor struct {
	cfg       *shared.Config
	logger    shared.ILogger
	policy    IFederationPolicy
	suspended ISuspendedHostsCache
	health    IInstanceHealth
	meta      IInstanceMetadata
	sender    IActivitySender
	metrics   IMetrics
	wg        sync.WaitGroup
}

func NewDeliverProcessor(
	cfg *shared.Config,
	logger shared.ILogger,
	policy IFederationPolicy,
	suspended ISuspendedHostsCache,
	health IInstanceHealth,
	meta IInstanceMetadata,
	sender IActivitySender,
	metrics IMetrics,
) IDeliverProcessor {
	return &deliverProcessor{
		cfg:       cfg,
		logger:    logger,
		policy:    policy,
		suspended: suspended,
		health:    health,
		meta:      meta,
		sender:    sender,
		metrics:   metrics,
	}
}

func (dp *deliverProcessor) Wait() {
	dp.wg.Wait()
}

func (dp *deliverProcessor) sigLevel(inst *dal.Instance) SigLevel {
	if level, ok := dp.cfg.Federation.SigLevelOverrides[inst.Host]; ok && level != "" {
		return SigLevel(level)
	}
	if inst.SigLevel != "" {
		return SigLevel(inst.SigLevel)
	}
	return SigLevelLegacy
}

func (dp *deliverProcessor) Process(ctx context.Context, job *dal.DeliveryJob) (string, error) {

	host := shared.HostOf(job.To)
	if !dp.policy.IsAllowed(host) {
		dp.metrics.DeliveryOutcome(DeliverySkipBlocked)
		return DeliverySkipBlocked, nil
	}

	isSuspended, err := dp.suspended.IsSuspended(ctx, host)
	if err != nil {
		return "", err
	}
	if isSuspended {
		dp.metrics.DeliveryOutcome(DeliverySkipSuspended)
		return DeliverySkipSuspended, nil
	}

	inst, err := dp.health.FetchOrRegister(host)
	if err != nil {
		return "", err
	}
	if dp.cfg.Federation.FetchInstanceMetadata {
		inst = dp.meta.RefreshIfStale(ctx, inst)
	}

	_, err = dp.sender.SignedPost(ctx, job.SenderId, dp.sigLevel(inst), job.To, []byte(job.Content), job.Digest)
	if err == nil {
		if err = dp.health.RecordSuccess(inst); err != nil {
			dp.logger.Errorf("Failed to record delivery success for %s: %v", host, err)
		}
		dp.metrics.DeliveryOutcome(DeliveryOk)
		return DeliveryOk, nil
	}

	// Shutting down; the remote did nothing wrong
	if ctx.Err() != nil {
		return "", fmt.Errorf("delivery to %s interrupted: %w", job.To, ctx.Err())
	}

	// Our own key material is broken; the remote is not at fault and retrying will not help
	if errors.Is(err, shared.ErrSigningFailed) {
		dp.logger.Errorf("Cannot sign delivery to %s as %s: %v", job.To, job.SenderId, err)
		dp.metrics.DeliveryOutcome(deliveryUnrecoverable)
		return "", &UnrecoverableError{err}
	}

	dp.recordFailure(host)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		dp.metrics.DeliveryOutcome(deliveryRetry)
		return "", err
	}
	if statusErr.StatusCode == http.StatusUnauthorized {
		dp.metrics.DeliveryOutcome(deliveryRetry)
		return "", fmt.Errorf("%w (may be caused by clock skew between servers)", err)
	}
	if statusErr.IsRetryable() {
		dp.metrics.DeliveryOutcome(deliveryRetry)
		return "", err
	}

	dp.metrics.DeliveryOutcome(deliveryUnrecoverable)
	if job.IsSharedInbox && statusErr.StatusCode == http.StatusGone {
		if goneErr := dp.health.MarkGone(host); goneErr != nil {
			dp.logger.Errorf("Failed to mark %s gone: %v", host, goneErr)
		}
		return "", &UnrecoverableError{fmt.Errorf("%s is gone: %w", host, err)}
	}
	return "", &UnrecoverableError{err}
}

// Instance bookkeeping must not hold up the retry decision
func (dp *deliverProcessor) recordFailure(host string) {
	dp.wg.Add(1)
	go func() {
		defer dp.wg.Done()
		if err := dp.health.RecordFailure(host); err != nil {
			dp.logger.Errorf("Failed to record delivery failure for %s: %v", host, err)
		}
	}()
}
