package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/core"
)

func countQuits(events []core.EventContext) int {
	n := 0
	for _, e := range events {
		if e.Type == core.EVENT_CODE_APPLICATION_QUIT {
			n++
		}
	}
	return n
}

func TestQuitSurvivesEventQueueOverflow(t *testing.T) {
	q := core.NewEventQueue(DEFAULT_EVENT_QUEUE_SIZE)
	q.Push(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	for i := 0; i < DEFAULT_EVENT_QUEUE_SIZE+44; i++ {
		q.Push(core.EventContext{
			Type: core.EVENT_CODE_MOUSE_MOVED,
			Data: &core.MouseEvent{PosX: float32(i)},
		})
	}

	drained := q.Drain()
	require.Len(t, drained, DEFAULT_EVENT_QUEUE_SIZE)
	assert.Zero(t, countQuits(drained))

	events := ensureQuit(drained, true)
	assert.Equal(t, 1, countQuits(events))
	assert.Equal(t, core.EVENT_CODE_APPLICATION_QUIT, events[len(events)-1].Type)
}

func TestEnsureQuitLeavesOtherBatchesAlone(t *testing.T) {
	batch := []core.EventContext{
		{Type: core.EVENT_CODE_APPLICATION_QUIT},
		{Type: core.EVENT_CODE_KEY_PRESSED, Data: &core.KeyEvent{KeyCode: core.KEY_A}},
	}
	assert.Equal(t, batch, ensureQuit(batch, true))
	assert.Empty(t, ensureQuit(nil, false))
	assert.Equal(t, batch[1:], ensureQuit(batch[1:], false))
}
