package rundir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Writer appends JSON-encoded records to a run's metrics.jsonl or
// system.jsonl, one record per line. It never rewrites prior lines, so
// a process killed mid-write leaves at most one truncated trailing
// line on disk (spec §5).
type Writer struct {
	mu sync.Mutex
	f  *os.File
}

// OpenWriter opens (creating if necessary) the append-only stream at
// path.
func OpenWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Writer{f: f}, nil
}

// WriteRecord marshals v and appends it as a single line.
func (w *Writer) WriteRecord(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.f.Write(line); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.f.Close()
}

// ReadRecords decodes every complete line in path as a T. path not
// existing is not an error; it reads as zero records.
//
// If the final line fails to decode, it is treated as a truncated
// in-flight write rather than a corruption and is silently dropped —
// every earlier line still must decode cleanly, or ReadRecords returns
// an error naming the offending line.
func ReadRecords[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	lines := bytes.Split(bytes.TrimRight(data, "\n"), []byte("\n"))
	records := make([]T, 0, len(lines))
	for i, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			if i == len(lines)-1 {
				break
			}
			return nil, fmt.Errorf("decode %s line %d: %w", path, i+1, err)
		}
		records = append(records, v)
	}
	return records, nil
}
