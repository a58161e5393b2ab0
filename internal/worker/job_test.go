package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/internal/domain"
)

func TestJobWaitReturnsSummary(t *testing.T) {
	s := &fakeSender{fail: map[string]error{"b": errors.New("rejected")}}
	d := &Dispatcher{Sender: s, Pacer: NoPacing{}}

	j := StartJob(context.Background(), d, "bc_1", "hello", recipients("a", "b", "c"))
	assert.Equal(t, "bc_1", j.ID())
	assert.Equal(t, 3, j.Total())

	sum, err := j.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DispatchSummary{Total: 3, Sent: 2, Failed: 1}, sum)

	st := j.Status()
	assert.Equal(t, JobCompleted, st.State)
	assert.Equal(t, 2, st.Sent)
	assert.Equal(t, 1, st.Failed)
	require.NotNil(t, st.FinishedAt)
}

func TestJobWaitHonoursCallerContext(t *testing.T) {
	s := &fakeSender{}
	d := &Dispatcher{Sender: s, Pacer: FixedPacer{Interval: 200 * time.Millisecond}}

	j := StartJob(context.Background(), d, "bc_2", "hello", recipients("a", "b"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := j.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, JobRunning, j.Status().State)

	// the job keeps going after the caller gives up
	sum, err := j.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Sent)
}

func TestJobCancel(t *testing.T) {
	s := &fakeSender{}
	d := &Dispatcher{Sender: s, Pacer: FixedPacer{Interval: time.Hour}}

	j := StartJob(context.Background(), d, "bc_3", "hello", recipients("a", "b", "c"))
	time.Sleep(10 * time.Millisecond)
	j.Cancel()

	select {
	case <-j.Done():
	case <-time.After(time.Second):
		t.Fatal("job did not stop after cancel")
	}
	sum, err := j.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.Sent)
}

func TestRegistryEvictsOldestFinished(t *testing.T) {
	d := &Dispatcher{Sender: &fakeSender{}, Pacer: NoPacing{}}
	r := NewRegistry(2)

	var jobs []*Job
	for _, id := range []string{"j1", "j2", "j3"} {
		j := StartJob(context.Background(), d, id, "hi", recipients("a"))
		_, err := j.Wait(context.Background())
		require.NoError(t, err)
		r.Put(j)
		jobs = append(jobs, j)
	}

	_, ok := r.Get("j1")
	assert.False(t, ok)
	got, ok := r.Get("j3")
	require.True(t, ok)
	assert.Same(t, jobs[2], got)
}

func TestRegistryKeepsRunningJobs(t *testing.T) {
	d := &Dispatcher{Sender: &fakeSender{}, Pacer: FixedPacer{Interval: time.Hour}}
	r := NewRegistry(1)

	running := StartJob(context.Background(), d, "run", "hi", recipients("a", "b"))
	defer running.Cancel()
	r.Put(running)

	d2 := &Dispatcher{Sender: &fakeSender{}, Pacer: NoPacing{}}
	done := StartJob(context.Background(), d2, "done", "hi", nil)
	_, _ = done.Wait(context.Background())
	r.Put(done)

	_, ok := r.Get("run")
	assert.True(t, ok)
	_, ok = r.Get("done")
	assert.False(t, ok)
}
