// Package offline implements the client-resident submission queue used by
// devices that could not reach the intake API. Items are durably stored on
// local disk and replayed in enqueue order once connectivity returns.
package offline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Submission mirrors the manual intake payload, minus the evidence URL which
// is only known after the blob has been uploaded during a sync pass.
type Submission struct {
	ScheduleID     string       `json:"schedule_id"`
	AttendanceDate string       `json:"attendance_date"`
	Status         string       `json:"status"`
	Notes          *string      `json:"notes,omitempty"`
	PhotoExt       string       `json:"photo_ext"`
	Fix            *LocationFix `json:"fix,omitempty"`
}

// LocationFix is a complete device capture. A real fix always carries its
// measured accuracy; a device that could not produce one leaves Fix nil so the
// replay never invents a value the server would reject as spoofed.
type LocationFix struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// Item is one queued submission with its queue-assigned sequence id.
type Item struct {
	Seq        int64      `json:"seq"`
	Payload    Submission `json:"payload"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
}

// Queue is a durable file-backed FIFO. Each item is a JSON metadata file plus
// a sibling blob file holding the raw photo bytes.
type Queue struct {
	dir string

	mu      sync.Mutex
	lastSeq int64
}

// NewQueue opens (or creates) a queue rooted at dir and recovers the last
// assigned sequence id from disk.
func NewQueue(dir string) (*Queue, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create queue directory: %w", err)
	}
	q := &Queue{dir: dir}
	items, err := q.ListPending()
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Seq > q.lastSeq {
			q.lastSeq = item.Seq
		}
	}
	return q, nil
}

// Enqueue durably stores a submission and its photo blob, returning the
// assigned sequence id. It never touches the network.
func (q *Queue) Enqueue(payload Submission, blob []byte) (int64, error) {
	q.mu.Lock()
	q.lastSeq++
	seq := q.lastSeq
	q.mu.Unlock()

	item := Item{Seq: seq, Payload: payload, EnqueuedAt: time.Now().UTC()}
	meta, err := json.Marshal(item)
	if err != nil {
		return 0, fmt.Errorf("marshal queue item: %w", err)
	}
	if err := os.WriteFile(q.blobPath(seq), blob, 0o644); err != nil {
		return 0, fmt.Errorf("write queue blob: %w", err)
	}
	if err := os.WriteFile(q.metaPath(seq), meta, 0o644); err != nil {
		_ = os.Remove(q.blobPath(seq))
		return 0, fmt.Errorf("write queue item: %w", err)
	}
	return seq, nil
}

// ListPending returns all queued items in enqueue order.
func (q *Queue) ListPending() ([]Item, error) {
	entries, err := os.ReadDir(q.dir)
	if err != nil {
		return nil, fmt.Errorf("read queue directory: %w", err)
	}
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(q.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read queue item %s: %w", name, err)
		}
		var item Item
		if err := json.Unmarshal(raw, &item); err != nil {
			// A torn write from a crash mid-enqueue; skip rather than wedge
			// the whole queue.
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Seq < items[j].Seq })
	return items, nil
}

// Blob returns the raw photo bytes stored with an item.
func (q *Queue) Blob(seq int64) ([]byte, error) {
	data, err := os.ReadFile(q.blobPath(seq))
	if err != nil {
		return nil, fmt.Errorf("read queue blob %d: %w", seq, err)
	}
	return data, nil
}

// Drain removes confirmed items. Only call after the server has durably
// accepted the submission (or reported it as already recorded).
func (q *Queue) Drain(seqs ...int64) error {
	for _, seq := range seqs {
		if err := os.Remove(q.metaPath(seq)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("drain queue item %d: %w", seq, err)
		}
		if err := os.Remove(q.blobPath(seq)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("drain queue blob %d: %w", seq, err)
		}
	}
	return nil
}

func (q *Queue) metaPath(seq int64) string {
	return filepath.Join(q.dir, pad(seq)+".json")
}

func (q *Queue) blobPath(seq int64) string {
	return filepath.Join(q.dir, pad(seq)+".blob")
}

func pad(seq int64) string {
	s := strconv.FormatInt(seq, 10)
	if len(s) >= 10 {
		return s
	}
	return strings.Repeat("0", 10-len(s)) + s
}
