package matching

import (
	"regexp"
	"strings"
	"testing"
)

func TestCleanTracklisting(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "side and number", input: "A1. Track", want: "Track"},
		{name: "no space after dot", input: "B2.Track", want: "Track"},
		{name: "side only", input: "c. Track", want: "Track"},
		{name: "lower case", input: "d4. Track", want: "Track"},
		{name: "side out of range", input: "E1. Track", want: "E1. Track"},
		{name: "number out of range", input: "A5. Track", want: "A5. Track"},
		{name: "not at start", input: "Track A1. Mix", want: "Track A1. Mix"},
		{name: "no marker", input: "Artist - Track", want: "Artist - Track"},
		{name: "repeated leading marker", input: "A1. A1. Track", want: "Track"},
		{name: "marker text inside title", input: "A. LA. Nights", want: "LA. Nights"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTracklisting(tt.input); got != tt.want {
				t.Errorf("CleanTracklisting(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanLabelOrCatalogNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "catalog number", input: "Artist - Track [TMZ12006]", want: "Artist - Track "},
		{name: "label name", input: "[Kalahari Oyster Cult] Artist - Track", want: " Artist - Track"},
		{name: "full width brackets", input: "Artist - Track 【LBL001】", want: "Artist - Track "},
		{name: "greedy across groups", input: "[A] Artist - Track [B]", want: ""},
		{name: "greedy keeps outer text", input: "x [A] y [B] z", want: "x  z"},
		{name: "no brackets", input: "Artist - Track", want: "Artist - Track"},
		{name: "unbalanced", input: "Artist - Track [oops", want: "Artist - Track [oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanLabelOrCatalogNumber(tt.input); got != tt.want {
				t.Errorf("CleanLabelOrCatalogNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanPremierePrefix(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "upper case with colon", input: "PREMIERE: Artist - Track", want: "Artist - Track"},
		{name: "lower case without colon", input: "premiere Artist - Track", want: "Artist - Track"},
		{name: "mid string", input: "Label Premiere: Artist - Track", want: "Label Artist - Track"},
		{name: "requires whitespace", input: "Premiere:Artist", want: "Premiere:Artist"},
		{name: "absent", input: "Artist - Track", want: "Artist - Track"},
		{name: "later occurrence kept", input: "Premiere Artist - Premiere Night", want: "Artist - Premiere Night"},
		{name: "stacked prefixes", input: "Premiere: Premiere: Artist - Track", want: "Artist - Track"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanPremierePrefix(tt.input); got != tt.want {
				t.Errorf("CleanPremierePrefix(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanParentheses(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "second group removed", input: "Track (Original Mix) (Label XYZ)", want: "Track (Original Mix)"},
		{name: "every later group removed", input: "Track (Dub) (2019) (Label)", want: "Track (Dub)"},
		{name: "sole junk group removed", input: "Track (Unreleased)", want: "Track"},
		{name: "sole remix group kept", input: "Track (Someone Remix)", want: "Track (Someone Remix)"},
		{name: "keyword match is case-insensitive", input: "Track (RADIO EDIT)", want: "Track (RADIO EDIT)"},
		{name: "keyword as substring", input: "Track (Remixed)", want: "Track (Remixed)"},
		{name: "no groups", input: "Track", want: "Track"},
		{name: "group in the middle", input: "Track (Live) Extended", want: "Track  Extended"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanParentheses(tt.input); got != tt.want {
				t.Errorf("CleanParentheses(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "all cleaners", input: "A1. PREMIERE: Oden & Fatzo - Midnight (Original Mix) (Free DL) [TMZ12006]", want: "Oden & Fatzo - Midnight (Original Mix)"},
		{name: "full width label and junk", input: "Artist - Track 【Label】 (Official Video)", want: "Artist - Track"},
		{name: "already clean", input: "Artist - Track", want: "Artist - Track"},
		{name: "surrounding whitespace", input: "  Artist - Track  ", want: "Artist - Track"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("output never keeps structural noise", func(t *testing.T) {
		marker := regexp.MustCompile(`(?i)^[A-D][1-4]?\. `)
		inputs := []string{
			"A1. Track",
			"B. Artist - Track",
			"premiere: Artist - Track",
			"Premiere: Premiere: Artist - Track",
			"Artist - Track [Label] [Cat001]",
			"d3. [X] premiere Track (Junk)",
		}
		for _, in := range inputs {
			got := Clean(in)
			if marker.MatchString(got) {
				t.Errorf("Clean(%q) = %q keeps a tracklisting marker", in, got)
			}
			if strings.Contains(got, "[") && strings.Contains(got, "]") {
				t.Errorf("Clean(%q) = %q keeps a bracketed run", in, got)
			}
			if strings.HasPrefix(strings.ToLower(got), "premiere: ") {
				t.Errorf("Clean(%q) = %q keeps a premiere prefix", in, got)
			}
		}
	})
}
