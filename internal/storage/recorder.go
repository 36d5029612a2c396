/*
Package storage
File: recorder.go
Description:
    Flight recorder. Destruction and level-up events are appended as JSON lines
    to zstd-compressed files, one file per UTC hour:

        <dir>/flight-2026-10-19-14.jsonl.zst
*/

package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/everforgeworks/plasma-siege/internal/game"
)

// Entry types written by the recorder.
const (
	EntryDestroyed = "destroyed"
	EntryLevelUp   = "level_up"
)

// Entry is one line of a recorder file.
type Entry struct {
	Time string          `json:"time"` // RFC3339 UTC
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Recorder writes JSONL entries through a zstd encoder, rotating hourly.
type Recorder struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewRecorder(baseDir string) *Recorder {
	return &Recorder{
		baseDir: baseDir,
		prefix:  "flight",
		now:     time.Now,
	}
}

func (r *Recorder) RecordDestroyed(ev game.DestructionEvent) error {
	return r.write(EntryDestroyed, ev)
}

func (r *Recorder) RecordLevelUp(ev game.LevelUpEvent) error {
	return r.write(EntryLevelUp, ev)
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

func (r *Recorder) write(kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	hour := now.Format("2006-01-02-15")
	if hour != r.curHour {
		if err := r.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(Entry{Time: now.Format(time.RFC3339), Type: kind, Data: data})
	if err != nil {
		return err
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return err
	}
	return r.w.Flush()
}

func (r *Recorder) rotateLocked(hour string) error {
	if err := r.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(r.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	r.f = f
	r.enc = enc
	r.w = bufio.NewWriterSize(enc, 64*1024)
	r.curHour = hour
	return nil
}

func (r *Recorder) closeLocked() error {
	var err error
	if r.w != nil {
		_ = r.w.Flush()
	}
	if r.enc != nil {
		err = r.enc.Close()
		r.enc = nil
	}
	if r.f != nil {
		_ = r.f.Close()
		r.f = nil
	}
	r.w = nil
	r.curHour = ""
	return err
}

func (r *Recorder) pathForHour(hour string) string {
	return filepath.Join(r.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", r.prefix, hour))
}

// ReadEntries decodes every entry of a closed recorder file.
func ReadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Entry
	jd := json.NewDecoder(dec)
	for {
		var e Entry
		if err := jd.Decode(&e); err == io.EOF {
			return out, nil
		} else if err != nil {
			return out, err
		}
		out = append(out, e)
	}
}
