package scheduler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/logging"
	"github.com/stretchr/testify/assert"
)

func TestRunOnceTicksTasksInOrder(t *testing.T) {
	loop := NewLoop(time.Millisecond, logging.NewLogrus("error", io.Discard).Get("loop"))
	var order []string
	loop.Add("dutycycle", TaskFunc(func(ctx context.Context, now time.Time) error {
		order = append(order, "dutycycle")
		return nil
	}))
	loop.Add("router", TaskFunc(func(ctx context.Context, now time.Time) error {
		order = append(order, "router")
		return nil
	}))

	loop.RunOnce(context.Background())

	assert.Equal(t, []string{"dutycycle", "router"}, order)
}

func TestRunOnceLogsTaskErrorsAndContinues(t *testing.T) {
	output := new(bytes.Buffer)
	loop := NewLoop(time.Millisecond, logging.NewLogrus("info", output).Get("loop"))
	ticked := false
	loop.Add("failing", TaskFunc(func(ctx context.Context, now time.Time) error {
		return errors.New("radio busy")
	}))
	loop.Add("next", TaskFunc(func(ctx context.Context, now time.Time) error {
		ticked = true
		return nil
	}))

	loop.RunOnce(context.Background())

	assert.True(t, ticked)
	assert.Contains(t, output.String(), "failing: radio busy")
}

func TestRunStopsWhenContextIsDone(t *testing.T) {
	loop := NewLoop(time.Millisecond, logging.NewLogrus("error", io.Discard).Get("loop"))
	var ticks int32
	ctx, cancel := context.WithCancel(context.Background())
	loop.Add("counter", TaskFunc(func(ctx context.Context, now time.Time) error {
		if atomic.AddInt32(&ticks, 1) == 3 {
			cancel()
		}
		return nil
	}))

	err := loop.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(3), atomic.LoadInt32(&ticks))
}
