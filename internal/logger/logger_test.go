package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" WARN ", LevelWarn, false},
		{"", LevelInfo, false},
		{"trace", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := Wrap(zap.New(core))

	l.Debug("hidden", nil)
	l.Info("SpeedPass written", Fields{"barcode": "123", "file": "a.pdf"})
	l.Error("email failed", Fields{"email": "x@example.com"}, errors.New("dial tcp: timeout"))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "SpeedPass written", entries[0].Message)
	assert.Equal(t, "123", entries[0].ContextMap()["barcode"])
	assert.Equal(t, "a.pdf", entries[0].ContextMap()["file"])

	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, "dial tcp: timeout", entries[1].ContextMap()["error"])
}

func TestSetDefault(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetDefault(Wrap(zap.New(core)))
	defer SetDefault(nil)

	Debug("d", nil)
	Info("i", nil)
	Warn("w", Fields{"k": 1})
	Error("e", nil, nil)

	assert.Equal(t, 4, logs.Len())
	assert.NotNil(t, Zap())
}

func TestNew(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatConsole} {
		l, err := New(LevelWarn, format)
		require.NoError(t, err)
		assert.False(t, l.Zap().Core().Enabled(zap.InfoLevel))
		assert.True(t, l.Zap().Core().Enabled(zap.WarnLevel))
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	m.IncrProcessed("email")
	m.AddProcessed("email", 2)
	m.IncrFailed("email", "send")
	m.AddPages(3)
	m.RecordRender(1500 * time.Millisecond)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.processed.WithLabelValues("email")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failed.WithLabelValues("email", "send")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.pages))
	assert.Equal(t, 1, testutil.CollectAndCount(m.render))
}

func TestDefaultMetrics(t *testing.T) {
	assert.Same(t, DefaultMetrics(), DefaultMetrics())
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.IncrProcessed("print")

	path := filepath.Join(t.TempDir(), "satops.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `satops_items_processed_total{operation="print"} 1`))
}
