package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestComponentJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("info", "json", &buf)
	defer InitWithWriter("info", "json", &bytes.Buffer{})

	l := Component("ingest")
	l.Info().Int("rows", 3).Msg("parsed")
	l.Debug().Msg("hidden")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "ingest", line["component"])
	assert.Equal(t, float64(3), line["rows"])
	assert.Equal(t, "parsed", line["message"])
}
