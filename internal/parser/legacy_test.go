package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLegacy(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "underlined titles",
			in:   "Document Title\n==============\n\nSection\n-------\n\ntext",
			want: "= Document Title\n\n== Section\n\ntext",
		},
		{
			name: "underline length must match within one",
			in:   "Title\n==========\n\ntext",
			want: "Title\n==========\n\ntext",
		},
		{
			name: "deeper levels",
			in:   "Sub\n~~~\nSubsub\n^^^^^^\nLast\n++++\nx",
			want: "=== Sub\n==== Subsub\n===== Last\nx",
		},
		{
			name: "comment blocks and lines dropped, delimited blocks kept",
			in:   "////\ngone\n////\n----\nKeep\n----\n----\n// kept in block\n----\n// dropped\nlast",
			want: "----\nKeep\n----\n----\n// kept in block\n----\nlast",
		},
		{
			name: "crlf input",
			in:   "Title\r\n=====\r\n\r\ntext",
			want: "= Title\n\ntext",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLegacy(tt.in))
		})
	}
}
