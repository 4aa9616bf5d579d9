package batch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2025, 3, 15, 7, 30, 0, 0, time.UTC) }
}

func TestReport_Summary(t *testing.T) {
	r := newReport("print-speedpasses", fixedClock())
	_, err := uuid.Parse(r.RunID)
	require.NoError(t, err)

	r.Succeed("111")
	r.Succeed("222")
	r.Fail("333", "render", errors.New("chrome crashed"))
	r.Fail("444", "qrcode", errors.New("timeout"))
	r.Fail("555", "render", errors.New("chrome crashed"))

	assert.Equal(t, 2, r.Succeeded())
	assert.True(t, r.HasFailures())
	assert.Equal(t, "print-speedpasses: 2 succeeded, 3 failed (render: 2, qrcode: 1)", r.Summary())
}

func TestReport_NoFailures(t *testing.T) {
	r := newReport("email-speedpasses", fixedClock())
	r.Succeed("111")

	assert.Equal(t, "email-speedpasses: 1 succeeded, 0 failed", r.Summary())

	path, err := r.WriteLog(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestReport_WriteLog(t *testing.T) {
	dir := t.TempDir()
	r := newReport("email-speedpasses", fixedClock())
	r.Fail("111 (Ada Lovelace)", "send", errors.New("550 mailbox\nunavailable"))

	path, err := r.WriteLog(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "errors-20250315-073000.log"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], r.RunID)
	assert.Equal(t, "2025-03-15T07:30:00Z\t111 (Ada Lovelace)\tsend\t550 mailbox unavailable", lines[1])
}

func TestReport_WriteLogMissingDir(t *testing.T) {
	r := newReport("x", fixedClock())
	r.Fail("1", "render", errors.New("boom"))

	_, err := r.WriteLog(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestReport_Processed(t *testing.T) {
	r := newReport("import-attendees", fixedClock())
	r.Succeed("111 (Ada Lovelace)")
	r.Fail("222 (Alan Turing)", "upsert", errors.New("duplicate key"))
	r.Succeed("333")

	processed := r.Processed()
	assert.Equal(t, []string{"111 (Ada Lovelace)", "333"}, processed)

	processed[0] = "changed"
	assert.Equal(t, "111 (Ada Lovelace)", r.Processed()[0])
}
