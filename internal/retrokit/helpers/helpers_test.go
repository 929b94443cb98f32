package helpers

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Super Mario Bros.", want: "Super Mario Bros."},
		{name: "colon", input: "Zelda: A Link to the Past", want: "Zelda_ A Link to the Past"},
		{name: "all", input: `a/b\c:d*e?f"g<h>i|j`, want: "a_b_c_d_e_f_g_h_i_j"},
		{name: "traversal", input: "../../etc", want: ".._.._etc"},
		{name: "empty", input: "", want: "_"},
		{name: "dot", input: ".", want: "_"},
		{name: "dotdot", input: "..", want: "_"},
		{name: "dots inside", input: "...", want: "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if strings.ContainsAny(got, forbiddenPathChars) {
				t.Fatalf("sanitized %q still has forbidden characters", got)
			}
			if got == "." || got == ".." || filepath.Base(got) != got {
				t.Fatalf("sanitized %q is not a single path segment", got)
			}
		})
	}
}

func TestUpperFirstRune(t *testing.T) {
	t.Parallel()
	if got := UpperFirstRune("nestopia"); got != "Nestopia" {
		t.Fatalf("unexpected value: %q", got)
	}
	if got := UpperFirstRune(""); got != "" {
		t.Fatalf("unexpected value: %q", got)
	}
}
