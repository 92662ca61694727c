package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"WARN":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}

	for input, want := range cases {
		SetLevel(input)
		assert.Equal(t, want, Logger.GetLevel(), "level for %q", input)
	}
}

func TestWithFields_EmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(bytes.NewBuffer(nil)) })

	WithFields(logrus.Fields{"category": "burn", "confidence": 0.65}).Info("classified")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "classified", entry["msg"])
	assert.Equal(t, "burn", entry["category"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
}
