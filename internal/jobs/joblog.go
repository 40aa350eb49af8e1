package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/talkincode/toughcrm/pkg/common"
)

// FileLog is an append-only job log. Each Write adds one "<YYYY-MM-DD HH:MM:SS> - <message>" line.
// The file is never truncated or rotated.
type FileLog struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func NewFileLog(path string) *FileLog {
	return &FileLog{path: path, now: time.Now}
}

func (l *FileLog) Path() string {
	return l.path
}

// FormatLine renders a log line without the trailing newline
func FormatLine(t time.Time, msg string) string {
	return fmt.Sprintf("%s - %s", t.Format(common.TimeLayout), msg)
}

// Write appends msg with the current timestamp
func (l *FileLog) Write(msg string) error {
	return l.WriteLines(msg)
}

// WriteLines appends several messages sharing one timestamp
func (l *FileLog) WriteLines(msgs ...string) error {
	if len(msgs) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create log dir %s", dir)
		}
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open job log %s", l.path)
	}
	defer f.Close()

	ts := l.now()
	for _, msg := range msgs {
		if _, err := fmt.Fprintln(f, FormatLine(ts, msg)); err != nil {
			return errors.Wrapf(err, "write job log %s", l.path)
		}
	}
	return nil
}
