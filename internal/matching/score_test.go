package matching

import (
	"math"
	"slices"
	"testing"

	"github.com/desertthunder/syncx/internal/models"
)

func track(t *testing.T, title string, artists ...string) models.Track {
	t.Helper()
	tr, err := models.NewTrack("id-"+title, title, artists)
	if err != nil {
		t.Fatalf("NewTrack(%q, %q) failed: %v", title, artists, err)
	}
	return tr
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore(t *testing.T) {
	tests := []struct {
		name          string
		reference     models.Track
		candidate     models.Track
		wantRisk      float64
		wantMissing   []string
		wantDeviation string
	}{
		{
			name:      "identical",
			reference: track(t, "Midnight", "Oden", "Fatzo"),
			candidate: track(t, "Midnight", "Oden", "Fatzo"),
			wantRisk:  0,
		},
		{
			name:      "case and order insensitive",
			reference: track(t, "Midnight", "Oden", "Fatzo"),
			candidate: track(t, "MIDNIGHT", "fatzo", "ODEN"),
			wantRisk:  0,
		},
		{
			name:      "collaboration stored as one artist",
			reference: track(t, "Midnight", "Oden", "Fatzo"),
			candidate: track(t, "Midnight", "Oden & Fatzo"),
			wantRisk:  0,
		},
		{
			name:        "one of two artists missing",
			reference:   track(t, "Midnight", "Oden", "Fatzo"),
			candidate:   track(t, "Midnight", "Oden"),
			wantRisk:    0.5,
			wantMissing: []string{"fatzo"},
		},
		{
			name:        "single artist missing",
			reference:   track(t, "Midnight", "Oden"),
			candidate:   track(t, "Midnight", "Someone"),
			wantRisk:    1.0,
			wantMissing: []string{"oden"},
		},
		{
			name:        "duplicate reference artists count once",
			reference:   track(t, "Midnight", "Oden", "oden", "Fatzo"),
			candidate:   track(t, "Midnight", "Oden"),
			wantRisk:    0.5,
			wantMissing: []string{"fatzo"},
		},
		{
			name:          "title diverges late",
			reference:     track(t, "Midnight", "Oden"),
			candidate:     track(t, "Midnite", "Oden"),
			wantRisk:      6.0 / 8.0,
			wantDeviation: "te",
		},
		{
			name:          "title diverges at first character",
			reference:     track(t, "Midnight", "Oden"),
			candidate:     track(t, "Sunrise", "Oden"),
			wantRisk:      1.0 / 8.0,
			wantDeviation: "sunrise",
		},
		{
			name:          "candidate title extends reference",
			reference:     track(t, "Midnight", "Oden"),
			candidate:     track(t, "Midnight Extended", "Oden"),
			wantRisk:      9.0 / 8.0,
			wantDeviation: " extended",
		},
		{
			name:          "candidate title is a prefix",
			reference:     track(t, "Midnight", "Oden"),
			candidate:     track(t, "Mid", "Oden"),
			wantRisk:      9.0 / 8.0,
			wantDeviation: "",
		},
		{
			name:          "empty candidate title",
			reference:     track(t, "Midnight", "Oden"),
			candidate:     track(t, "", "Oden"),
			wantRisk:      1.0,
			wantDeviation: "",
		},
		{
			name:          "missing artist and diverging title",
			reference:     track(t, "Midnight", "Oden", "Fatzo"),
			candidate:     track(t, "Midnite", "Fatzo"),
			wantRisk:      0.5 + 6.0/8.0,
			wantMissing:   []string{"oden"},
			wantDeviation: "te",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.reference, tt.candidate)
			if !almostEqual(got.Risk, tt.wantRisk) {
				t.Errorf("risk = %v, want %v", got.Risk, tt.wantRisk)
			}
			if !slices.Equal(got.MissingArtists, tt.wantMissing) {
				t.Errorf("missing = %q, want %q", got.MissingArtists, tt.wantMissing)
			}
			if got.TitleDeviation != tt.wantDeviation {
				t.Errorf("deviation = %q, want %q", got.TitleDeviation, tt.wantDeviation)
			}
		})
	}
}

func TestScoreProperties(t *testing.T) {
	pairs := [][2]models.Track{
		{track(t, "Midnight", "Oden", "Fatzo"), track(t, "Midnight", "Oden & Fatzo")},
		{track(t, "Midnight", "Oden"), track(t, "", "Other")},
		{track(t, "Ωmega", "Ünder"), track(t, "ωMEGA", "ünder")},
		{track(t, "A", "B"), track(t, "Completely Different", "C", "D", "E")},
	}

	t.Run("risk is never negative", func(t *testing.T) {
		for _, p := range pairs {
			if r := Score(p[0], p[1]).Risk; r < 0 {
				t.Errorf("Score(%s, %s) = %v", p[0].DisplayName(), p[1].DisplayName(), r)
			}
		}
	})

	t.Run("self score is zero", func(t *testing.T) {
		for _, p := range pairs {
			for _, tr := range p {
				if tr.Title() == "" {
					continue
				}
				if r := Score(tr, tr).Risk; r != 0 {
					t.Errorf("Score(%s, itself) = %v", tr.DisplayName(), r)
				}
			}
		}
	})

	t.Run("unicode case folding", func(t *testing.T) {
		if r := Score(pairs[2][0], pairs[2][1]).Risk; r != 0 {
			t.Errorf("expected folded match, got risk %v", r)
		}
	})
}
