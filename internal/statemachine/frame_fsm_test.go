package statemachine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameFSM_RecordOnce(t *testing.T) {
	ctx := context.Background()
	f := NewFrameFSM("")
	assert.Equal(t, FrameStateDraft, f.Current())

	calls := 0
	persist := PersistFunc(func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, f.Record(ctx, persist))
	require.NoError(t, f.Record(ctx, persist))
	assert.Equal(t, FrameStateRecording, f.Current())
	assert.Equal(t, 1, calls)
}

func TestFrameFSM_FailedPersistStaysDraft(t *testing.T) {
	ctx := context.Background()
	f := NewFrameFSM(FrameStateDraft)
	boom := errors.New("sheet unavailable")

	err := f.Record(ctx, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, FrameStateDraft, f.Current())

	require.NoError(t, f.Record(ctx, func(context.Context) error { return nil }))
	assert.Equal(t, FrameStateRecording, f.Current())
}

func TestFrameFSM_Reset(t *testing.T) {
	ctx := context.Background()
	f := NewFrameFSM(FrameStateRecording)

	require.NoError(t, f.Reset(ctx))
	assert.Equal(t, FrameStateDraft, f.Current())
	require.NoError(t, f.Reset(ctx), "reset of a draft frame is a no-op")
}
