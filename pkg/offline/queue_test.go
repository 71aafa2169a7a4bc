package offline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueListDrain(t *testing.T) {
	q, err := NewQueue(t.TempDir())
	require.NoError(t, err)

	first, err := q.Enqueue(Submission{ScheduleID: "s1", AttendanceDate: "2025-03-10", Status: "present"}, []byte("photo-1"))
	require.NoError(t, err)
	second, err := q.Enqueue(Submission{ScheduleID: "s2", AttendanceDate: "2025-03-10", Status: "present"}, []byte("photo-2"))
	require.NoError(t, err)
	assert.Less(t, first, second)

	items, err := q.ListPending()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "s1", items[0].Payload.ScheduleID)
	assert.Equal(t, "s2", items[1].Payload.ScheduleID)

	blob, err := q.Blob(first)
	require.NoError(t, err)
	assert.Equal(t, []byte("photo-1"), blob)

	require.NoError(t, q.Drain(first))
	items, err = q.ListPending()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, second, items[0].Seq)

	// Drain is tolerant of already-removed items.
	require.NoError(t, q.Drain(first))
}

func TestQueueRecoversSequenceAfterReopen(t *testing.T) {
	dir := t.TempDir()
	q, err := NewQueue(dir)
	require.NoError(t, err)

	seq, err := q.Enqueue(Submission{ScheduleID: "s1"}, []byte("x"))
	require.NoError(t, err)

	reopened, err := NewQueue(dir)
	require.NoError(t, err)
	next, err := reopened.Enqueue(Submission{ScheduleID: "s2"}, []byte("y"))
	require.NoError(t, err)
	assert.Greater(t, next, seq)

	items, err := reopened.ListPending()
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
