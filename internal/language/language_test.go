package language

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"uk", "uk"},
		{"de", "de"},
		{"en-US", "en"},
		{" pt-BR ", "pt"},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.input)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "not-a-language-at-all"} {
		if _, err := Normalize(input); err == nil {
			t.Fatalf("Normalize(%q) must fail", input)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("uk"); got != "Ukrainian" {
		t.Fatalf("DisplayName(uk) = %q", got)
	}
	if got := DisplayName("de"); got != "German" {
		t.Fatalf("DisplayName(de) = %q", got)
	}
	if got := DisplayName(""); got != "Unknown" {
		t.Fatalf("DisplayName empty = %q", got)
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("war and peace"); got != "War And Peace" {
		t.Fatalf("TitleCase = %q", got)
	}
}
