package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	in := `Authorization: Bearer abc.def-123 key sk-abcdefghijklmnopqrstuvwxyz {"apiKey": "secret"}`
	out := Redact(in)
	assert.NotContains(t, out, "abc.def-123")
	assert.NotContains(t, out, "sk-abcdefghijklmnopqrstuvwxyz")
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "[REDACTED]")
}

func TestSnip(t *testing.T) {
	assert.Equal(t, "hello", Snip("hello", 10))
	assert.Equal(t, "he…", Snip("hello", 2))
	assert.Equal(t, "", Snip("hello", 0))
	assert.Equal(t, "żó…", Snip("żółw", 2))
}

func TestNewVerbosity(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	New(&buf, true).Debug("shown", "repo", "/tmp/x")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "repo=/tmp/x")
}
