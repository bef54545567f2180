package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
)

// Frame lifecycle states
const (
	FrameStateDraft     = "draft"
	FrameStateRecording = "recording"
)

const (
	eventRecord = "record"
	eventReset  = "reset"
)

// PersistFunc writes whatever must exist before a frame starts recording
type PersistFunc func(ctx context.Context) error

// FrameFSM tracks whether a frame's participants have been written.
// A frame leaves draft on its first persisted finding; the transition is
// cancelled if participant persistence fails so the next finding retries.
type FrameFSM struct {
	fsm *fsm.FSM
}

// NewFrameFSM creates a frame state machine in the given state
func NewFrameFSM(state string) *FrameFSM {
	if state == "" {
		state = FrameStateDraft
	}

	f := &FrameFSM{}
	f.fsm = fsm.NewFSM(
		state,
		fsm.Events{
			// draft → recording (participants persisted)
			{Name: eventRecord, Src: []string{FrameStateDraft}, Dst: FrameStateRecording},

			// recording → draft (company changed, participants must be written again)
			{Name: eventReset, Src: []string{FrameStateRecording}, Dst: FrameStateDraft},
		},
		fsm.Callbacks{
			"before_" + eventRecord: func(ctx context.Context, e *fsm.Event) {
				if len(e.Args) == 0 {
					return
				}
				persist, ok := e.Args[0].(PersistFunc)
				if !ok || persist == nil {
					return
				}
				if err := persist(ctx); err != nil {
					e.Cancel(err)
				}
			},
		},
	)
	return f
}

// Record moves a draft frame to recording after persist succeeds.
// It is a no-op for a frame already recording.
func (f *FrameFSM) Record(ctx context.Context, persist PersistFunc) error {
	if !f.fsm.Can(eventRecord) {
		return nil
	}
	if err := f.fsm.Event(ctx, eventRecord, persist); err != nil {
		var canceled fsm.CanceledError
		if errors.As(err, &canceled) && canceled.Err != nil {
			return fmt.Errorf("failed to record frame: %w", canceled.Err)
		}
		return fmt.Errorf("failed to record frame: %w", err)
	}
	return nil
}

// Reset returns a recording frame to draft
func (f *FrameFSM) Reset(ctx context.Context) error {
	if !f.fsm.Can(eventReset) {
		return nil
	}
	if err := f.fsm.Event(ctx, eventReset); err != nil {
		return fmt.Errorf("failed to reset frame: %w", err)
	}
	return nil
}

// Current returns the current state
func (f *FrameFSM) Current() string {
	return f.fsm.Current()
}
