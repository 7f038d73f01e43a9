package logic

import (
	"fedi_engine/dal"
	"fedi_engine/shared"
	"fmt"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_instance_health.go -package mocks fedi_engine/logic IInstanceHealth

// IInstanceHealth keeps track of how remote hosts respond to our deliveries.
type IInstanceHealth interface {
	FetchOrRegister(host string) (*dal.Instance, error)
	RecordSuccess(inst *dal.Instance) error
	RecordFailure(host string) error
	MarkGone(host string) error
	SetSuspension(host, state string) error
}

type instanceHealth struct {
	cfg     *shared.Config
	logger  shared.ILogger
	repo    dal.IRepo
	clock   shared.IClock
	cache   ISuspendedHostsCache
	metrics IMetrics
}

func NewInstanceHealth(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	clock shared.IClock,
	cache ISuspendedHostsCache,
	metrics IMetrics,
) IInstanceHealth {
	return &instanceHealth{cfg, logger, repo, clock, cache, metrics}
}

func (ih *instanceHealth) FetchOrRegister(host string) (*dal.Instance, error) {
	host = shared.NormalizeHost(host)
	inst, err := ih.repo.GetInstance(host)
	if err != nil || inst != nil {
		return inst, err
	}
	ih.logger.Infof("First contact with instance %s", host)
	return ih.repo.AddInstanceIfNotExist(&dal.Instance{
		Host:             host,
		SuspensionState:  dal.SuspensionNone,
		SigLevel:         string(SigLevelLegacy),
		FirstRetrievedAt: ih.clock.Now(),
	})
}

func (ih *instanceHealth) RecordSuccess(inst *dal.Instance) error {
	if !inst.IsNotResponding {
		return nil
	}
	ih.logger.Infof("Instance %s is responding again", inst.Host)
	if err := ih.repo.UpdateInstanceResponding(inst.Host, false, nil); err != nil {
		return err
	}
	inst.IsNotResponding = false
	inst.NotRespondingSince = nil
	return nil
}

// RecordFailure reads the current row, so that concurrent failures see each other's updates.
func (ih *instanceHealth) RecordFailure(host string) error {

	inst, err := ih.FetchOrRegister(host)
	if err != nil {
		return err
	}
	now := ih.clock.Now()

	if !inst.IsNotResponding {
		return ih.repo.UpdateInstanceResponding(inst.Host, true, &now)
	}
	if inst.NotRespondingSince == nil {
		// Flag set but never timestamped; start counting now
		return ih.repo.UpdateInstanceResponding(inst.Host, true, &now)
	}
	if inst.SuspensionState != dal.SuspensionNone {
		return nil
	}
	if inst.NotRespondingSince.After(now.Add(-ih.cfg.AutoSuspendAfter())) {
		return nil
	}

	updated, err := ih.repo.UpdateInstanceSuspensionIf(inst.Host, dal.SuspensionNone, dal.SuspensionAutoNotResponding)
	if err != nil {
		return err
	}
	if updated {
		ih.logger.Warnf("Suspending instance %s: not responding since %s", inst.Host, inst.NotRespondingSince)
		ih.metrics.InstanceSuspended(dal.SuspensionAutoNotResponding)
		ih.cache.Invalidate()
	}
	return nil
}

func (ih *instanceHealth) MarkGone(host string) error {
	host = shared.NormalizeHost(host)
	if err := ih.repo.SetInstanceSuspension(host, dal.SuspensionGone); err != nil {
		return err
	}
	ih.logger.Warnf("Suspending instance %s: shared inbox is gone", host)
	ih.metrics.InstanceSuspended(dal.SuspensionGone)
	ih.cache.Invalidate()
	return nil
}

// SetSuspension is the manual override: suspend a host, or lift any suspension with SuspensionNone.
func (ih *instanceHealth) SetSuspension(host, state string) error {
	if state != dal.SuspensionNone && state != dal.SuspensionManual {
		return fmt.Errorf("invalid suspension state: %s", state)
	}
	inst, err := ih.FetchOrRegister(host)
	if err != nil {
		return err
	}
	if err = ih.repo.SetInstanceSuspension(inst.Host, state); err != nil {
		return err
	}
	if state == dal.SuspensionNone && inst.IsNotResponding {
		// Otherwise the next failure would suspend it again right away
		if err = ih.repo.UpdateInstanceResponding(inst.Host, false, nil); err != nil {
			return err
		}
	}
	ih.logger.Infof("Suspension state of %s set to %s", inst.Host, state)
	ih.metrics.InstanceSuspended(state)
	ih.cache.Invalidate()
	return nil
}
