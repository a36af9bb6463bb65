package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()

	s, err := NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })

	return s
}

func TestAddCronRejectsDuplicateName(t *testing.T) {
	s := newTestScheduler(t)

	noop := func(context.Context) error { return nil }

	require.NoError(t, s.AddCron("files.audit", "*/10 * * * *", noop))
	require.Error(t, s.AddCron("files.audit", "*/5 * * * *", noop))
	require.Error(t, s.AddCron("bad", "not a cron", noop))

	infos := s.GetJobInfos()
	require.Len(t, infos, 1)
	assert.Equal(t, "files.audit", infos[0].Name)
	assert.Equal(t, StatusScheduled, infos[0].Status)
}

func TestRunNowRecordsOutcome(t *testing.T) {
	s := newTestScheduler(t)
	s.Start()

	ran := make(chan struct{}, 1)

	require.NoError(t, s.AddCron("ok", "0 3 * * *", func(context.Context) error {
		ran <- struct{}{}
		return nil
	}))
	require.NoError(t, s.AddCron("fails", "0 3 * * *", func(context.Context) error {
		return errors.New("boom")
	}))

	require.NoError(t, s.RunNow("ok"))
	require.NoError(t, s.RunNow("fails"))

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}

	assert.Eventually(t, func() bool {
		info, err := s.GetJobInfoByName("ok")
		return err == nil && !info.LastSuccess.IsZero()
	}, 5*time.Second, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		info, err := s.GetJobInfoByName("fails")
		return err == nil && info.Status == StatusError && info.Error == "boom"
	}, 5*time.Second, 20*time.Millisecond)

	require.Error(t, s.RunNow("missing"))
}

func TestRemoveJobByName(t *testing.T) {
	s := newTestScheduler(t)

	require.NoError(t, s.AddCron("gone", "0 3 * * *", func(context.Context) error { return nil }))
	require.NoError(t, s.RemoveJobByName("gone"))
	require.Error(t, s.RemoveJobByName("gone"))
	assert.Empty(t, s.GetJobInfos())
}
