package offline

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrDuplicate is returned by a Submitter when the server reports that the
// attendance record already exists. During replay this means the local copy
// is stale and safe to discard.
var ErrDuplicate = errors.New("attendance already recorded")

// Uploader pushes a photo blob to the evidence store and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, payload Submission, blob []byte) (string, error)
}

// Submitter delivers a manual submission to the intake API.
type Submitter interface {
	Submit(ctx context.Context, payload Submission, photoURL string) error
}

// SyncResult summarises one sync pass.
type SyncResult struct {
	Submitted  int
	Duplicates int
	Remaining  int
}

// Syncer replays queued submissions through the live intake pipeline.
type Syncer struct {
	queue     *Queue
	uploader  Uploader
	submitter Submitter
	logger    *zap.Logger
}

// NewSyncer wires a queue to its upload and submit collaborators.
func NewSyncer(queue *Queue, uploader Uploader, submitter Submitter, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{queue: queue, uploader: uploader, submitter: submitter, logger: logger}
}

// Sync replays pending items in enqueue order. An upload failure leaves the
// item queued and moves on; a submit that succeeds or reports a duplicate
// drains the item. The pass is not atomic: a crash leaves the remainder for
// the next online transition, which is safe because replaying an already
// accepted item yields ErrDuplicate and drains.
func (s *Syncer) Sync(ctx context.Context) (SyncResult, error) {
	items, err := s.queue.ListPending()
	if err != nil {
		return SyncResult{}, err
	}

	var result SyncResult
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}

		blob, err := s.queue.Blob(item.Seq)
		if err != nil {
			s.logger.Warn("queued blob unreadable", zap.Int64("seq", item.Seq), zap.Error(err))
			continue
		}

		photoURL, err := s.uploader.Upload(ctx, item.Payload, blob)
		if err != nil {
			s.logger.Warn("evidence upload failed, item stays queued", zap.Int64("seq", item.Seq), zap.Error(err))
			continue
		}

		err = s.submitter.Submit(ctx, item.Payload, photoURL)
		switch {
		case err == nil:
			result.Submitted++
		case errors.Is(err, ErrDuplicate):
			result.Duplicates++
		default:
			s.logger.Warn("replay submission failed, item stays queued", zap.Int64("seq", item.Seq), zap.Error(err))
			continue
		}

		if err := s.queue.Drain(item.Seq); err != nil {
			return result, err
		}
	}

	remaining, err := s.queue.ListPending()
	if err != nil {
		return result, err
	}
	result.Remaining = len(remaining)
	return result, nil
}
