package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/delta/internal/errors"
)

func TestParseKeyValues(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{name: "none", pairs: nil, want: nil},
		{name: "single", pairs: []string{"team=red"}, want: map[string]string{"team": "red"}},
		{name: "empty value", pairs: []string{"team="}, want: map[string]string{"team": ""}},
		{name: "value with equals", pairs: []string{"expr=a=b"}, want: map[string]string{"expr": "a=b"}},
		{name: "later wins", pairs: []string{"k=1", "k=2"}, want: map[string]string{"k": "2"}},
		{name: "missing separator", pairs: []string{"team"}, wantErr: true},
		{name: "blank key", pairs: []string{" =red"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKeyValues("metadata", tt.pairs)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckFormat(t *testing.T) {
	assert.NoError(t, checkFormat("text"))
	assert.NoError(t, checkFormat("json"))
	assert.ErrorIs(t, checkFormat("yaml"), errors.ErrInvalidInput)
}

func TestReadContent(t *testing.T) {
	t.Run("literal", func(t *testing.T) {
		got, err := readContent("ciphertext", nil)
		require.NoError(t, err)
		assert.Equal(t, "ciphertext", got)
	})

	t.Run("stdin", func(t *testing.T) {
		got, err := readContent("-", strings.NewReader("from-stdin\n"))
		require.NoError(t, err)
		assert.Equal(t, "from-stdin", got)
	})

	t.Run("stdin without reader", func(t *testing.T) {
		_, err := readContent("-", nil)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})
}

func TestWriteMetadata(t *testing.T) {
	var out bytes.Buffer
	writeMetadata(&out, map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, "Metadata:\n  a=1\n  b=2\n", out.String())

	out.Reset()
	writeMetadata(&out, nil)
	assert.Equal(t, "Metadata: (none)\n", out.String())
}
