package generation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("\\documentclass{article}", "Senior Go engineer, distributed systems.")

	assert.Contains(t, prompt, "\\documentclass{article}")
	assert.Contains(t, prompt, "Senior Go engineer, distributed systems.")
	// The template slots are ordered: master template before description
	assert.Less(t,
		strings.Index(prompt, "\\documentclass{article}"),
		strings.Index(prompt, "Senior Go engineer"))
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no fences",
			input: "\\documentclass{article}\n\\end{document}",
			want:  "\\documentclass{article}\n\\end{document}",
		},
		{
			name:  "latex fence",
			input: "```latex\n\\documentclass{article}\n```",
			want:  "\\documentclass{article}",
		},
		{
			name:  "bare fence with whitespace",
			input: "\n```\n\\documentclass{article}\n```\n\n",
			want:  "\\documentclass{article}",
		},
		{
			name:  "only fences",
			input: "```latex\n```",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.input))
		})
	}
}

func TestLoadTemplate(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "master_resume.tex")
	require.NoError(t, os.WriteFile(path, []byte("\\documentclass{article}\n"), 0o644))

	content, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "\\documentclass{article}", content)
}

func TestLoadTemplateMissing(t *testing.T) {
	_, err := LoadTemplate(filepath.Join(t.TempDir(), "nope.tex"))
	assert.Error(t, err)
}

func TestLoadTemplateEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tex")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	_, err := LoadTemplate(path)
	assert.Error(t, err)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("", "gpt-4o-mini", "template")
	assert.ErrorIs(t, err, ErrAPIKeyNotSet)

	_, err = NewClient("key", "gpt-4o-mini", "")
	assert.Error(t, err)
}
