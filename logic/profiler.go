package logic

import (
	"context"
	"fedi_engine/dal"
	"fedi_engine/shared"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"
)

const profilerStartDelaySec = 10
const profilerLoopSec = 60

// IProfiler periodically dumps goroutine stacks to disk, so stuck deliveries and lock waits can be
// diagnosed after the fact.
type IProfiler interface {
	Run(ctx context.Context)
	SaveProfile() (string, error)
}

type profiler struct {
	logger          shared.ILogger
	repo            dal.IRepo
	clock           shared.IClock
	profileDir      string
	profileKeepDays int
}

func NewProfiler(cfg *shared.Config, logger shared.ILogger, repo dal.IRepo, clock shared.IClock) IProfiler {
	return &profiler{logger, repo, clock, cfg.ProfileDir, cfg.ProfileKeepDays}
}

// SaveProfile writes one dump and returns its path.
func (prof *profiler) SaveProfile() (string, error) {
	if err := os.MkdirAll(prof.profileDir, 0755); err != nil {
		return "", err
	}
	ts := prof.clock.Now().Format("2006-01-02!15-04-05")
	profPath := filepath.Join(prof.profileDir, fmt.Sprintf("%v.txt", ts))
	f, err := os.Create(profPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err = fmt.Fprintf(f, "Goroutine count: %d\n", runtime.NumGoroutine()); err != nil {
		return "", err
	}
	if qlen, err := prof.repo.GetDeliveryQueueLength(); err == nil {
		if _, err = fmt.Fprintf(f, "Delivery queue length: %d\n", qlen); err != nil {
			return "", err
		}
	}
	if _, err = fmt.Fprintln(f); err != nil {
		return "", err
	}
	if err = pprof.Lookup("goroutine").WriteTo(f, 2); err != nil {
		return "", err
	}
	return profPath, nil
}

func (prof *profiler) purgeOld() error {
	cutoff := prof.clock.Now().AddDate(0, 0, -prof.profileKeepDays)
	return filepath.Walk(prof.profileDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && info.ModTime().Before(cutoff) {
			return os.Remove(path)
		}
		return nil
	})
}

func (prof *profiler) Run(ctx context.Context) {
	if prof.profileDir == "" {
		return
	}
	select {
	case <-ctx.Done():
		return
	case <-time.After(profilerStartDelaySec * time.Second):
	}
	ticker := time.NewTicker(profilerLoopSec * time.Second)
	defer ticker.Stop()
	for {
		if _, err := prof.SaveProfile(); err != nil {
			prof.logger.Warnf("Failed to save goroutine profile: %v", err)
		} else if err = prof.purgeOld(); err != nil {
			prof.logger.Warnf("Failed to purge old profiles: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
