// =============================================================================
// internal/eventlog/eventlog.go - Append-only JSONL diagnostic event log
// =============================================================================
package eventlog

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// EnvVar names the environment variable overriding the log path.
const EnvVar = "DNS_DIAG_LOG"

// DefaultPath is used when EnvVar is unset.
const DefaultPath = "dns_diag.log.jsonl"

// Event is one diagnostic record: which tool ran, against which domain, how
// long it took and how large the serialized report was.
type Event struct {
	Tool    string  `json:"tool"`
	Dominio string  `json:"dominio"`
	DurMS   int64   `json:"dur_ms"`
	OutSize int     `json:"out_size"`
	TS      float64 `json:"ts"`
}

// Log is a process-wide, append-only, newline-delimited JSON sink. Appends
// are serialized so a single record is never interleaved; every write is
// best-effort and a failure never reaches the caller. A nil *Log is valid
// and discards everything.
type Log struct {
	mu sync.Mutex
	f  *os.File
}

// Open opens (or creates) the log file in append mode. On failure it
// returns nil, which callers can use as a discard-everything sink.
func Open(path string) *Log {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil
	}
	return &Log{f: f}
}

// FromEnv opens the log at the path named by DNS_DIAG_LOG, falling back to
// the default path.
func FromEnv() *Log {
	path := os.Getenv(EnvVar)
	if path == "" {
		path = DefaultPath
	}
	return Open(path)
}

// Append writes one event line. Atomic per call: the whole line goes out in
// a single Write.
func (l *Log) Append(tool, domain string, dur time.Duration, outSize int) {
	if l == nil {
		return
	}
	line, err := json.Marshal(Event{
		Tool:    tool,
		Dominio: domain,
		DurMS:   dur.Milliseconds(),
		OutSize: outSize,
		TS:      float64(time.Now().UnixNano()) / float64(time.Second),
	})
	if err != nil {
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.f.Write(line)
}

// Close closes the underlying file.
func (l *Log) Close() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.f.Close()
}
