package logic_test

import (
	"fedi_engine/dal"
	"fedi_engine/logic"
	"fedi_engine/shared"
	"fedi_engine/test"
	"fedi_engine/test/fakes"
	"fedi_engine/test/mocks"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"testing"
	"time"
)

type healthHarness struct {
	cfg    *shared.Config
	logger *mocks.MockILogger
	repo   *fakes.MemRepo
	clock  *fakes.Clock
	cache  logic.ISuspendedHostsCache
}

func setupHealthTest(t *testing.T) (*gomock.Controller, *healthHarness, logic.IInstanceHealth) {
	ctrl := gomock.NewController(t)
	h := healthHarness{
		cfg:    test.MakeConfig(),
		logger: mocks.NewMockILogger(ctrl),
	}
	test.StubLogger(h.logger)
	sut := h.reset()
	return ctrl, &h, sut
}

// reset gives the harness an empty store and a fresh component on top of it.
func (h *healthHarness) reset() logic.IInstanceHealth {
	h.repo = fakes.NewMemRepo()
	h.clock = fakes.NewClock(test.StartTime)
	h.cache = logic.NewSuspendedHostsCache(h.cfg, h.repo, h.clock)
	return logic.NewInstanceHealth(h.cfg, h.logger, h.repo, h.clock, h.cache, logic.NewMetrics(h.cfg))
}

func (h *healthHarness) addFailing(host string, since time.Time) {
	_, _ = h.repo.AddInstanceIfNotExist(&dal.Instance{
		Host:               host,
		SuspensionState:    dal.SuspensionNone,
		IsNotResponding:    true,
		NotRespondingSince: &since,
	})
}

func TestInstanceHealth_FetchOrRegister(t *testing.T) {
	_, h, sut := setupHealthTest(t)

	inst, err := sut.FetchOrRegister("Remote.Example.")
	require.NoError(t, err)
	assert.Equal(t, test.RemoteHost, inst.Host)
	assert.Equal(t, dal.SuspensionNone, inst.SuspensionState)
	assert.Equal(t, string(logic.SigLevelLegacy), inst.SigLevel)
	assert.Equal(t, test.StartTime, inst.FirstRetrievedAt)

	h.clock.Advance(time.Hour)
	again, err := sut.FetchOrRegister(test.RemoteHost)
	require.NoError(t, err)
	assert.Equal(t, test.StartTime, again.FirstRetrievedAt)
}

func TestInstanceHealth_FirstFailureStartsCounting(t *testing.T) {
	_, h, sut := setupHealthTest(t)

	require.NoError(t, sut.RecordFailure(test.RemoteHost))
	inst, _ := h.repo.GetInstance(test.RemoteHost)
	assert.True(t, inst.IsNotResponding)
	assert.Equal(t, test.StartTime, *inst.NotRespondingSince)

	// Later failures keep the original timestamp
	h.clock.Advance(time.Hour)
	require.NoError(t, sut.RecordFailure(test.RemoteHost))
	inst, _ = h.repo.GetInstance(test.RemoteHost)
	assert.Equal(t, test.StartTime, *inst.NotRespondingSince)
}

func TestInstanceHealth_SuspensionThreshold(t *testing.T) {
	_, h, _ := setupHealthTest(t)
	limit := h.cfg.AutoSuspendAfter()

	properties := gopter.NewProperties(nil)
	properties.Property("suspended exactly when failing for the configured period", prop.ForAll(
		func(minutes int) bool {
			sut := h.reset()
			failingFor := time.Duration(minutes) * time.Minute
			h.addFailing(test.RemoteHost, test.StartTime.Add(-failingFor))

			if err := sut.RecordFailure(test.RemoteHost); err != nil {
				return false
			}
			inst, _ := h.repo.GetInstance(test.RemoteHost)
			if failingFor >= limit {
				return inst.SuspensionState == dal.SuspensionAutoNotResponding
			}
			return inst.SuspensionState == dal.SuspensionNone
		},
		gen.IntRange(0, 2*int(limit/time.Minute)),
	))
	properties.TestingRun(t)
}

func TestInstanceHealth_SuspendedHostStaysAsIs(t *testing.T) {
	_, h, sut := setupHealthTest(t)
	h.addFailing(test.RemoteHost, test.StartTime.Add(-30*24*time.Hour))
	require.NoError(t, h.repo.SetInstanceSuspension(test.RemoteHost, dal.SuspensionManual))
	calls := h.repo.SuspensionCalls

	require.NoError(t, sut.RecordFailure(test.RemoteHost))
	inst, _ := h.repo.GetInstance(test.RemoteHost)
	assert.Equal(t, dal.SuspensionManual, inst.SuspensionState)
	assert.Equal(t, calls, h.repo.SuspensionCalls)
}

func TestInstanceHealth_RecordSuccess(t *testing.T) {
	_, h, sut := setupHealthTest(t)
	h.addFailing(test.RemoteHost, test.StartTime.Add(-time.Hour))

	inst, _ := h.repo.GetInstance(test.RemoteHost)
	require.NoError(t, sut.RecordSuccess(inst))
	assert.False(t, inst.IsNotResponding)
	stored, _ := h.repo.GetInstance(test.RemoteHost)
	assert.False(t, stored.IsNotResponding)
	assert.Nil(t, stored.NotRespondingSince)
}

func TestInstanceHealth_MarkGone(t *testing.T) {
	_, h, sut := setupHealthTest(t)
	_, err := sut.FetchOrRegister(test.RemoteHost)
	require.NoError(t, err)

	suspended, err := h.cache.IsSuspended(t.Context(), test.RemoteHost)
	require.NoError(t, err)
	assert.False(t, suspended)

	require.NoError(t, sut.MarkGone(test.RemoteHost))
	suspended, err = h.cache.IsSuspended(t.Context(), test.RemoteHost)
	require.NoError(t, err)
	assert.True(t, suspended)
}

func TestInstanceHealth_ManualSuspension(t *testing.T) {
	_, h, sut := setupHealthTest(t)
	h.addFailing(test.RemoteHost, test.StartTime.Add(-30*24*time.Hour))
	require.NoError(t, h.repo.SetInstanceSuspension(test.RemoteHost, dal.SuspensionAutoNotResponding))

	assert.Error(t, sut.SetSuspension(test.RemoteHost, dal.SuspensionGone))

	require.NoError(t, sut.SetSuspension(test.RemoteHost, dal.SuspensionNone))
	inst, _ := h.repo.GetInstance(test.RemoteHost)
	assert.Equal(t, dal.SuspensionNone, inst.SuspensionState)
	assert.False(t, inst.IsNotResponding)

	// Lifted suspension starts a fresh count
	require.NoError(t, sut.RecordFailure(test.RemoteHost))
	inst, _ = h.repo.GetInstance(test.RemoteHost)
	assert.Equal(t, dal.SuspensionNone, inst.SuspensionState)

	require.NoError(t, sut.SetSuspension(test.ThirdHost, dal.SuspensionManual))
	suspended, err := h.cache.IsSuspended(t.Context(), test.ThirdHost)
	require.NoError(t, err)
	assert.True(t, suspended)
}
