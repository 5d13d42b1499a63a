package internal

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Logger is the human-readable companion to a session's JSONL manifest:
// one timestamped line per event, safe for concurrent use.
type Logger struct {
	mu sync.Mutex
	f  *os.File
}

func NewLogger(path string) (*Logger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Logger{f: f}, nil
}

func (l *Logger) Log(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.f, "%s %s\n", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))
}

func (l *Logger) Close() error {
	return l.f.Close()
}
