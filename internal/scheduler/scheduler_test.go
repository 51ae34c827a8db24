package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testingpkg "github.com/aristath/wellness/internal/testing"
)

type countingJob struct {
	runs int
	err  error
}

func (j *countingJob) Run() error {
	j.runs++
	return j.err
}

func (j *countingJob) Name() string { return "counting" }

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("@every 1h", &countingJob{}))
	require.NoError(t, s.AddJob("0 0 3 * * *", &countingJob{}))
	assert.Equal(t, 2, s.Entries())

	assert.Error(t, s.AddJob("not a schedule", &countingJob{}))
	assert.Equal(t, 2, s.Entries())
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("boom")}

	assert.EqualError(t, s.RunNow(job), "boom")
	assert.Equal(t, 1, job.runs)
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@every 1h", &countingJob{}))
	assert.NotPanics(t, func() {
		s.Start()
		s.Stop()
	})
}

func TestWALCheckpointJob(t *testing.T) {
	db := testingpkg.NewTestDB(t)
	job := NewWALCheckpointJob(db, zerolog.Nop())

	assert.Equal(t, "wal_checkpoint", job.Name())
	assert.NoError(t, job.Run())
}
