package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := InitWriter("debug", "json", &buf)
	require.NoError(t, err)

	l.Named("editor").Info("project saved", zap.String("project_id", "p1"))
	Sync()

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "project saved", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "editor", line["component"])
	assert.Equal(t, "p1", line["project_id"])
}

func TestInitRejectsBadInput(t *testing.T) {
	_, err := Init("loud", "json")
	assert.Error(t, err)

	_, err = Init("info", "xml")
	assert.Error(t, err)
}

func TestReplaceRestores(t *testing.T) {
	_, err := Init("info", "console")
	require.NoError(t, err)
	orig := L()

	nop := zap.NewNop()
	restore := Replace(nop)
	assert.Same(t, nop, L())

	restore()
	assert.Same(t, orig, L())
}
