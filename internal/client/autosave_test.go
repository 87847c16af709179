package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saveRecorder struct {
	mu    sync.Mutex
	saved []string
	err   error
	block chan struct{}
}

func (r *saveRecorder) save(ctx context.Context, value string) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, value)
	return r.err
}

func (r *saveRecorder) values() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.saved...)
}

func TestAutoSaver_CoalescesEdits(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutoSaver(context.Background(), "Cal", 30*time.Millisecond, rec.save)
	defer a.Close()

	for _, v := range []string{"Cali", "Cali ", "Cali V", "Cali Valle"} {
		a.Set(v)
	}
	assert.Equal(t, SaveDirty, a.State())

	require.Eventually(t, func() bool { return a.State() == SaveClean }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"Cali Valle"}, rec.values())
}

func TestAutoSaver_BackToSavedValueCancels(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutoSaver(context.Background(), "Cali", 20*time.Millisecond, rec.save)

	a.Set("Calix")
	a.Set("Cali")
	assert.Equal(t, SaveClean, a.State())

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.values())
}

func TestAutoSaver_BlurFlushes(t *testing.T) {
	rec := &saveRecorder{}
	a := NewAutoSaver(context.Background(), "", time.Hour, rec.save)

	require.NoError(t, a.Blur(), "nothing to flush")
	assert.Empty(t, rec.values())

	a.Set("3001234567")
	require.NoError(t, a.Blur())
	assert.Equal(t, []string{"3001234567"}, rec.values())
	assert.Equal(t, SaveClean, a.State())
}

func TestAutoSaver_FailedSaveStaysDirty(t *testing.T) {
	rec := &saveRecorder{err: errors.New("sin conexión")}
	a := NewAutoSaver(context.Background(), "", time.Hour, rec.save)

	a.Set("Cali")
	require.Error(t, a.Blur())
	assert.Equal(t, SaveDirty, a.State())
	assert.EqualError(t, a.Err(), "sin conexión")
	assert.False(t, a.Sync("Bogotá"))
	assert.Equal(t, "Cali", a.Value())
}

func TestAutoSaver_SyncOnlyWhenClean(t *testing.T) {
	rec := &saveRecorder{block: make(chan struct{})}
	a := NewAutoSaver(context.Background(), "Cali", time.Hour, rec.save)

	assert.True(t, a.Sync("Palmira"))
	assert.Equal(t, "Palmira", a.Value())

	a.Set("Buga")
	assert.False(t, a.Sync("Palmira"), "refresh must not overwrite an edit")

	done := make(chan error, 1)
	go func() { done <- a.Blur() }()
	require.Eventually(t, func() bool { return a.State() == SaveSaving }, time.Second, time.Millisecond)

	assert.False(t, a.Sync("Palmira"))
	a.Set("Buga Valle")
	assert.Equal(t, SaveSaving, a.State())

	close(rec.block)
	require.NoError(t, <-done)

	// the edit typed during the save is pending again
	assert.Equal(t, SaveDirty, a.State())
	assert.Equal(t, "Buga Valle", a.Value())
	a.Close()
	assert.Equal(t, []string{"Buga"}, rec.values())
}

func TestSaveStateString(t *testing.T) {
	assert.Equal(t, "saving", SaveSaving.String())
}
