package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/service"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type countingMaterializer struct {
	calls   atomic.Int32
	horizon atomic.Int32
	aligned atomic.Bool
	err     error
}

func (m *countingMaterializer) MaterializeAllActive(_ context.Context, horizonDays int, alignToMonday bool) (service.MaterializeReport, error) {
	m.calls.Add(1)
	m.horizon.Store(int32(horizonDays))
	m.aligned.Store(alignToMonday)
	return service.MaterializeReport{RunID: "run"}, m.err
}

func TestSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	m := &countingMaterializer{}
	s := NewScheduler(m, 10*time.Millisecond, 15, true, zaptest.NewLogger(t))

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return m.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(15), m.horizon.Load())
	assert.True(t, m.aligned.Load())
}

func TestSchedulerKeepsRunningAfterErrors(t *testing.T) {
	m := &countingMaterializer{err: errors.New("timetable 1 on 2020-10-13: boom")}
	s := NewScheduler(m, 10*time.Millisecond, 15, false, zaptest.NewLogger(t))

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return m.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	m := &countingMaterializer{}
	s := NewScheduler(m, time.Hour, 15, false, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return m.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := NewLogger(env)
		assert.NoError(t, err)
		assert.NotNil(t, logger)
	}
}
