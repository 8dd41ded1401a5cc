package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type row struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "TABLE": FormatTable, "json": FormatJSON, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestPrinter_JSONAndYAML(t *testing.T) {
	data := []row{{ID: 1, Name: "Arte"}}

	var buf bytes.Buffer
	require.NoError(t, (&Printer{Format: FormatJSON, Out: &buf}).Print(data, nil))
	var fromJSON []row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Equal(t, data, fromJSON)

	buf.Reset()
	require.NoError(t, (&Printer{Format: FormatYAML, Out: &buf}).Print(data, nil))
	var fromYAML []row
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, data, fromYAML)
}

func TestPrinter_Table(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Format: FormatTable, Out: &buf}

	require.NoError(t, p.Print(nil, [][]string{{"ID", "NAME"}, {"1", "Arte"}}))
	assert.Contains(t, buf.String(), "NAME")
	assert.Contains(t, buf.String(), "Arte")
	assert.False(t, p.Structured())

	buf.Reset()
	require.NoError(t, p.Print(nil, [][]string{{"ID", "NAME"}}))
	assert.Equal(t, "No results.\n", buf.String())
}
