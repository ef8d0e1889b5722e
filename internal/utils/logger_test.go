package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })
	return &buf
}

func TestLogEntryCarriesRequestIdentity(t *testing.T) {
	buf := captureLog(t)

	ctx := WithCorrelationID(context.Background(), "corr-1")
	ctx = WithRequestID(ctx, "req-1")
	LogInfo(ctx, "metadata resolved", Fields{"video_id": "7"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "corr-1", entry["correlation_id"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "7", entry["video_id"])
	assert.Equal(t, "metadata resolved", entry["message"])
	assert.NotEmpty(t, entry["timestamp"])
}

func TestLogEntryWithoutIdentityOmitsFields(t *testing.T) {
	buf := captureLog(t)

	LogWarn(context.Background(), "extraction failed", Fields{"url": "x"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "correlation_id")
	assert.NotContains(t, entry, "request_id")
	assert.Equal(t, "warning", entry["level"])
}

func TestGeneratedIDs(t *testing.T) {
	assert.NotEqual(t, GenerateCorrelationID(), GenerateCorrelationID())
	assert.Contains(t, GenerateRequestID(), "req_")
}
