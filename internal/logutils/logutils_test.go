package logutils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", &buf, false)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Int("fields", 3).Msg("loaded")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "loaded", event["message"])
	assert.Equal(t, "info", event["level"])
	assert.EqualValues(t, 3, event["fields"])
	assert.Contains(t, event, "time")
}

func TestNew_Pretty(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", &buf, true)
	require.NoError(t, err)

	log.Debug().Msg("zoomed")
	assert.Contains(t, buf.String(), "zoomed")
	assert.NotContains(t, buf.String(), "{")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New("loud", &bytes.Buffer{}, false)
	require.Error(t, err)
}

func TestOpen(t *testing.T) {
	w, closer, err := Open("")
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)
	closer()

	path := filepath.Join(t.TempDir(), "logs", "field-selector.log")
	w, closer, err = Open(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	closer()
	assert.FileExists(t, path)
}
