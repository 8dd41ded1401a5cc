package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportLine(t *testing.T) {
	tests := []struct {
		shell string
		token string
		want  string
	}{
		{"posix", "tok123", "export CHAMUS_TOKEN='tok123'"},
		{"bash", "a'b", `export CHAMUS_TOKEN='a'\''b'`},
		{"posix", "x';rm${IFS}-rf;'", `export CHAMUS_TOKEN='x'\'';rm${IFS}-rf;'\'''`},
		{"fish", `a'b\c`, `set -x CHAMUS_TOKEN 'a\'b\\c'`},
		{"powershell", "a'b", "$env:CHAMUS_TOKEN='a''b'"},
	}
	for _, tt := range tests {
		t.Run(tt.shell+"/"+tt.token, func(t *testing.T) {
			line, hint, err := exportLine(tt.shell, tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, line)
			assert.NotEmpty(t, hint)
		})
	}
}

func TestExportLine_RejectsControlCharacters(t *testing.T) {
	for _, token := range []string{"tok\n; echo pwned", "tok 123", "tök"} {
		_, _, err := exportLine("posix", token)
		assert.Error(t, err, "%q", token)
	}
}

func TestExportLine_UnsupportedShell(t *testing.T) {
	_, _, err := exportLine("tcsh", "tok123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported shell format")
}
