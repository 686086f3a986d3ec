package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "議事録", want: "議事録"},
		{name: "single quote", input: "it's a file", want: `it\'s a file`},
		{name: "backslash", input: `dir\file`, want: `dir\\file`},
		{name: "backslash and quote", input: `a\'b`, want: `a\\\'b`},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeQuery(tt.input))
		})
	}
}
