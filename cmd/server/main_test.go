package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pep299/daily-news-digest/internal/infrastructure"
	"github.com/pep299/daily-news-digest/internal/model"
	"github.com/pep299/daily-news-digest/internal/repository/notify"
	"github.com/pep299/daily-news-digest/internal/service"
)

type countingRunner struct {
	calls  atomic.Int32
	report *service.Report
	err    error
}

func (r *countingRunner) Run(ctx context.Context) (*service.Report, error) {
	r.calls.Add(1)
	return r.report, r.err
}

func TestNewScheduler(t *testing.T) {
	cfg := &infrastructure.Config{Schedule: "0 8 * * *", Timezone: "Asia/Shanghai"}

	c, err := newScheduler(context.Background(), cfg, &countingRunner{}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "Asia/Shanghai", c.Location().String())
	require.Len(t, c.Entries(), 1)

	from := time.Date(2025, 3, 14, 0, 0, 0, 0, c.Location())
	next := c.Entries()[0].Schedule.Next(from)
	assert.Equal(t, time.Date(2025, 3, 14, 8, 0, 0, 0, c.Location()), next)
}

func TestNewSchedulerInvalid(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *infrastructure.Config
		contains string
	}{
		{name: "bad schedule", cfg: &infrastructure.Config{Schedule: "every morning", Timezone: "UTC"}, contains: "DIGEST_SCHEDULE"},
		{name: "bad timezone", cfg: &infrastructure.Config{Schedule: "0 8 * * *", Timezone: "Mars/Olympus"}, contains: "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newScheduler(context.Background(), tt.cfg, &countingRunner{}, zerolog.Nop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestScheduledJobRunsDigest(t *testing.T) {
	tests := []struct {
		name   string
		runner *countingRunner
		log    string
	}{
		{
			name:   "delivered",
			runner: &countingRunner{report: &service.Report{Channel: model.ChannelPushPlus, Delivery: notify.Result{OK: true}}},
			log:    "Scheduled digest delivered",
		},
		{
			name:   "not delivered",
			runner: &countingRunner{report: &service.Report{Delivery: notify.Result{OK: false, Message: "boom"}}},
			log:    "boom",
		},
		{
			name:   "error",
			runner: &countingRunner{err: errors.New("no delivery channel configured")},
			log:    "Scheduled digest failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			cfg := &infrastructure.Config{Schedule: "@every 1h", Timezone: "UTC"}

			c, err := newScheduler(context.Background(), cfg, tt.runner, zerolog.New(&logs))
			require.NoError(t, err)

			c.Entries()[0].Job.Run()

			assert.EqualValues(t, 1, tt.runner.calls.Load())
			assert.True(t, strings.Contains(logs.String(), tt.log), logs.String())
		})
	}
}
