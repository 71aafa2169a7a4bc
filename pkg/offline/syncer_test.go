package offline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	failFor map[string]bool
	calls   []string
}

func (f *fakeUploader) Upload(_ context.Context, payload Submission, _ []byte) (string, error) {
	f.calls = append(f.calls, payload.ScheduleID)
	if f.failFor[payload.ScheduleID] {
		return "", errors.New("evidence store unreachable")
	}
	return "http://evidence/" + payload.ScheduleID + ".jpg", nil
}

type fakeSubmitter struct {
	duplicateFor map[string]bool
	failFor      map[string]bool
	submitted    []string
	payloads     []Submission
}

func (f *fakeSubmitter) Submit(_ context.Context, payload Submission, _ string) error {
	if f.failFor[payload.ScheduleID] {
		return errors.New("server error")
	}
	if f.duplicateFor[payload.ScheduleID] {
		return ErrDuplicate
	}
	f.submitted = append(f.submitted, payload.ScheduleID)
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestSyncReplaysInOrderAndDrains(t *testing.T) {
	q, err := NewQueue(t.TempDir())
	require.NoError(t, err)
	for _, id := range []string{"s1", "s2", "s3"} {
		_, err := q.Enqueue(Submission{ScheduleID: id, AttendanceDate: "2025-03-10", Status: "present"}, []byte(id))
		require.NoError(t, err)
	}

	uploader := &fakeUploader{}
	submitter := &fakeSubmitter{}
	syncer := NewSyncer(q, uploader, submitter, nil)

	result, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Submitted)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, []string{"s1", "s2", "s3"}, uploader.calls)
	assert.Equal(t, []string{"s1", "s2", "s3"}, submitter.submitted)
}

func TestSyncDuplicateIsDrainedAsSuccess(t *testing.T) {
	q, err := NewQueue(t.TempDir())
	require.NoError(t, err)
	_, err = q.Enqueue(Submission{ScheduleID: "s1", Status: "present"}, []byte("x"))
	require.NoError(t, err)

	syncer := NewSyncer(q, &fakeUploader{}, &fakeSubmitter{duplicateFor: map[string]bool{"s1": true}}, nil)
	result, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 0, result.Remaining)

	items, err := q.ListPending()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSyncPreservesCapturedFix(t *testing.T) {
	q, err := NewQueue(t.TempDir())
	require.NoError(t, err)
	_, err = q.Enqueue(Submission{
		ScheduleID: "s1",
		Status:     "present",
		Fix:        &LocationFix{Latitude: -6.2, Longitude: 106.8, Accuracy: 12.4},
	}, []byte("x"))
	require.NoError(t, err)
	_, err = q.Enqueue(Submission{ScheduleID: "s2", Status: "present"}, []byte("y"))
	require.NoError(t, err)

	submitter := &fakeSubmitter{}
	syncer := NewSyncer(q, &fakeUploader{}, submitter, nil)
	result, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Submitted)
	assert.Equal(t, 0, result.Remaining)

	require.Len(t, submitter.payloads, 2)
	require.NotNil(t, submitter.payloads[0].Fix)
	assert.Equal(t, 12.4, submitter.payloads[0].Fix.Accuracy)
	assert.Nil(t, submitter.payloads[1].Fix)
}

func TestSyncUploadFailureLeavesItemQueued(t *testing.T) {
	q, err := NewQueue(t.TempDir())
	require.NoError(t, err)
	_, err = q.Enqueue(Submission{ScheduleID: "s1", Status: "present"}, []byte("x"))
	require.NoError(t, err)
	_, err = q.Enqueue(Submission{ScheduleID: "s2", Status: "present"}, []byte("y"))
	require.NoError(t, err)

	uploader := &fakeUploader{failFor: map[string]bool{"s1": true}}
	submitter := &fakeSubmitter{}
	syncer := NewSyncer(q, uploader, submitter, nil)

	result, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Submitted)
	assert.Equal(t, 1, result.Remaining)
	// The failed item did not block the one behind it.
	assert.Equal(t, []string{"s2"}, submitter.submitted)

	items, err := q.ListPending()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "s1", items[0].Payload.ScheduleID)
}

func TestSyncSubmitFailureLeavesItemQueued(t *testing.T) {
	q, err := NewQueue(t.TempDir())
	require.NoError(t, err)
	_, err = q.Enqueue(Submission{ScheduleID: "s1", Status: "present"}, []byte("x"))
	require.NoError(t, err)

	syncer := NewSyncer(q, &fakeUploader{}, &fakeSubmitter{failFor: map[string]bool{"s1": true}}, nil)
	result, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Submitted)
	assert.Equal(t, 1, result.Remaining)
}
