package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		absent   []string
	}{
		{
			name:     "keeps formatting",
			input:    `<h1>Issue #1</h1><p>Hello <b>readers</b></p>`,
			contains: []string{"<h1>Issue #1</h1>", "<b>readers</b>"},
		},
		{
			name:     "keeps links",
			input:    `<a href="https://example.com/post">read more</a>`,
			contains: []string{`href="https://example.com/post"`, "read more"},
		},
		{
			name:   "drops scripts",
			input:  `<p>hi</p><script>alert(1)</script>`,
			absent: []string{"<script", "alert(1)"},
		},
		{
			name:     "drops event handlers",
			input:    `<img src="https://example.com/a.png" onerror="steal()">`,
			contains: []string{"https://example.com/a.png"},
			absent:   []string{"onerror", "steal()"},
		},
		{
			name:   "drops javascript urls",
			input:  `<a href="javascript:alert(1)">x</a>`,
			absent: []string{"javascript:"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SanitizeHTML(tt.input)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}
