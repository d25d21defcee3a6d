package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintJSON(t *testing.T) {
	data := struct {
		Table string `json:"table_name"`
		TTL   int    `json:"default_ttl"`
	}{Table: "sessions", TTL: 3600}

	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, data))

	assert.Contains(t, buf.String(), `"table_name": "sessions"`)
	assert.Contains(t, buf.String(), `"default_ttl": 3600`)
}

func TestPrintJSONArray(t *testing.T) {
	data := []map[string]string{
		{"key": "alpha"},
		{"key": "beta"},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, data))

	assert.Contains(t, buf.String(), `"key": "alpha"`)
	assert.Contains(t, buf.String(), `"key": "beta"`)
}
