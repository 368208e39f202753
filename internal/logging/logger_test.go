package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestWithLayoutAttachesField(t *testing.T) {
	buf := captureDefault(t)

	WithLayout("layout-1").Info("assembled")

	record := decodeLine(t, buf)
	assert.Equal(t, "layout-1", record["layout_id"])
	assert.Equal(t, "assembled", record["msg"])
}

func TestWithTableAttachesField(t *testing.T) {
	buf := captureDefault(t)

	WithTable("ads").Warn("skipped")

	record := decodeLine(t, buf)
	assert.Equal(t, "ads", record["table"])
}
