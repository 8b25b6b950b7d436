package scraper_test

import (
	"testing"

	"github.com/jobportal/aggregator/internal/scraper"
)

func TestNormalize(t *testing.T) {
	n := scraper.NewTextNormalizer()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \n\t  ", ""},
		{"plain text", "Senior Go Engineer", "Senior Go Engineer"},
		{"collapses whitespace", "Senior   Go\n\nEngineer\t(remote)", "Senior Go Engineer (remote)"},
		{"strips tags", "<p>We are <b>hiring</b> a Go engineer.</p>", "We are hiring a Go engineer."},
		{"nested markup", "<div><ul><li>Go</li><li>Mongo</li></ul></div>", "Go Mongo"},
		{"decodes entities", "Backend &amp; infra", "Backend & infra"},
		{"drops script content", "<p>Apply now</p><script>var x = 1;</script>", "Apply now"},
		{"malformed markup degrades", "<p>Unclosed <b>bold", "Unclosed bold"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := n.Normalize(tc.in)
			if got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := scraper.NewTextNormalizer()

	inputs := []string{
		"",
		"plain text",
		"<p>We are <b>hiring</b>!</p>",
		"  spaced   out  ",
		"Backend &amp; infra",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
