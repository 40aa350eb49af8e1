package jobs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func fixedLog(t *testing.T, name string) *FileLog {
	t.Helper()
	l := NewFileLog(filepath.Join(t.TempDir(), "logs", name))
	l.now = func() time.Time { return time.Date(2024, 6, 3, 6, 0, 0, 0, time.Local) }
	return l
}

func TestFileLogAppends(t *testing.T) {
	l := fixedLog(t, "crm_heartbeat_log.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(l.Path()), 0o755))
	require.NoError(t, os.WriteFile(l.Path(), []byte("existing line\n"), 0o644))

	require.NoError(t, l.Write("CRM is alive"))
	require.NoError(t, l.Write("CRM is alive"))

	assert.Equal(t, []string{
		"existing line",
		"2024-06-03 06:00:00 - CRM is alive",
		"2024-06-03 06:00:00 - CRM is alive",
	}, readLines(t, l.Path()))
}

func TestFileLogWriteLines(t *testing.T) {
	l := fixedLog(t, "order_reminders_log.txt")
	require.NoError(t, l.WriteLines())
	_, err := os.Stat(l.Path())
	assert.True(t, os.IsNotExist(err), "no file for an empty batch")

	require.NoError(t, l.WriteLines("a", "b"))
	assert.Equal(t, []string{
		"2024-06-03 06:00:00 - a",
		"2024-06-03 06:00:00 - b",
	}, readLines(t, l.Path()))
}

func TestFormatLine(t *testing.T) {
	ts := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "2023-01-02 03:04:05 - hello", FormatLine(ts, "hello"))
}
