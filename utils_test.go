package swiftgate_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sagarc03/swiftgate"
	"github.com/stretchr/testify/assert"
)

func TestIsValidName(t *testing.T) {
	// Create a name with invalid UTF-8 (without embedding raw invalid bytes in source)
	invalidUTF8 := string([]byte{'a', 0xff, 'b'})

	tt := []struct {
		Name  string
		Input string
		Want  bool
	}{
		// Basics
		{Name: "empty", Input: "", Want: false},
		{Name: "single dot", Input: ".", Want: false},
		{Name: "double dot", Input: "..", Want: false},
		{Name: "too long", Input: strings.Repeat("a", 257), Want: false},
		{Name: "max length", Input: strings.Repeat("a", 256), Want: true},

		// Separators and URL syntax
		{Name: "contains slash", Input: "a/b", Want: false},
		{Name: "contains backslash", Input: `a\b`, Want: false},
		{Name: "contains question mark", Input: "a?b", Want: false},
		{Name: "contains hash", Input: "a#b", Want: false},
		{Name: "contains percent", Input: "a%2fb", Want: false},

		// Whitespace and control chars
		{Name: "contains space", Input: "a b", Want: false},
		{Name: "contains tab", Input: "a\tb", Want: false},
		{Name: "contains newline", Input: "a\nb", Want: false},
		{Name: "contains NUL", Input: "a\x00b", Want: false},
		{Name: "contains DEL", Input: "a\x7fb", Want: false},

		// UTF-8 validity
		{Name: "invalid utf8", Input: invalidUTF8, Want: false},

		// Valid examples
		{Name: "uuid", Input: "0b9e2a5c-6f1e-4a5b-9f57-3f0c6d2d7e11", Want: true},
		{Name: "account", Input: "AUTH_test", Want: true},
		{Name: "dots inside", Input: "report.v2.pdf", Want: true},
		{Name: "hidden style", Input: ".config", Want: true},
		{Name: "unicode", Input: "документы", Want: true},
	}

	// sanity check for our generated invalid UTF-8 case
	if utf8.ValidString(invalidUTF8) {
		t.Fatalf("test setup error: invalidUTF8 is unexpectedly valid")
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			got := swiftgate.IsValidName(tc.Input)
			if got != tc.Want {
				expected := "valid"
				if !tc.Want {
					expected = "invalid"
				}
				t.Errorf("expected name %q to be %s, got %v", tc.Input, expected, got)
			}
		})
	}
}

func TestNameWithExtension(t *testing.T) {
	tests := []struct {
		name         string
		downloadName string
		meta         *swiftgate.FileMetadata
		want         string
	}{
		{name: "download name keeps own extension", downloadName: "a.txt", meta: &swiftgate.FileMetadata{Filename: "b.pdf"}, want: "a.txt"},
		{name: "download name gains extension", downloadName: "annual", meta: &swiftgate.FileMetadata{Filename: "report.pdf"}, want: "annual.pdf"},
		{name: "falls back to metadata filename", downloadName: "", meta: &swiftgate.FileMetadata{Filename: "report.pdf"}, want: "report.pdf"},
		{name: "blank download name", downloadName: "   ", meta: &swiftgate.FileMetadata{Filename: "x.csv"}, want: "x.csv"},
		{name: "no metadata", downloadName: "annual", meta: nil, want: "annual"},
		{name: "nothing known", downloadName: "", meta: nil, want: "download"},
		{name: "metadata without extension", downloadName: "annual", meta: &swiftgate.FileMetadata{Filename: "README"}, want: "annual"},
		{name: "multi dot extension uses last", downloadName: "backup", meta: &swiftgate.FileMetadata{Filename: "data.tar.gz"}, want: "backup.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, swiftgate.NameWithExtension(tt.downloadName, tt.meta))
		})
	}
}

func TestContentDisposition(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "report.pdf", want: `attachment; filename="report.pdf"`},
		{name: "quotes escaped", input: `say "hi".txt`, want: `attachment; filename="say \"hi\".txt"`},
		{name: "backslash escaped", input: `a\b.txt`, want: `attachment; filename="a\\b.txt"`},
		{name: "control chars dropped", input: "a\r\nb.txt", want: `attachment; filename="ab.txt"`},
		{name: "unicode kept", input: "отчёт.pdf", want: `attachment; filename="отчёт.pdf"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, swiftgate.ContentDisposition(tt.input))
		})
	}
}
