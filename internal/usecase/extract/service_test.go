package extract

import (
	"errors"
	"testing"

	"github.com/nomen-research/nomen/internal/domain"
)

func TestExtract_EmptyName(t *testing.T) {
	svc := New()

	got, err := svc.Extract("")
	if err != nil {
		t.Fatalf("Extract(\"\"): unexpected error %v", err)
	}
	if !got.Invalid {
		t.Error("Extract(\"\"): Invalid = false, want true")
	}
	for key, v := range got.Map() {
		if v != 0 {
			t.Errorf("Extract(\"\"): %s = %v, want 0", key, v)
		}
	}
}

func TestExtract_NoAlphabeticCharacters(t *testing.T) {
	svc := New()

	_, err := svc.Extract("12345 !!!")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Extract: err = %v, want ErrInvalidInput", err)
	}
}

func TestExtract_StripsNonAlphabetic(t *testing.T) {
	svc := New()

	plain, err := svc.Extract("Katrina")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	noisy, err := svc.Extract("K4a-t!r(i)n_a9")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if plain != noisy {
		t.Errorf("noisy name features = %+v, want %+v", noisy, plain)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	svc := New()
	names := []string{"Katrina", "Mo", "Tchaikovsky", "Anna", "Bob Dylan"}

	for _, name := range names {
		first, err := svc.Extract(name)
		if err != nil {
			t.Fatalf("Extract(%q): %v", name, err)
		}
		second, err := svc.Extract(name)
		if err != nil {
			t.Fatalf("Extract(%q): %v", name, err)
		}
		if first != second {
			t.Errorf("Extract(%q) not idempotent: %+v vs %+v", name, first, second)
		}
	}
}

func TestExtract_ScoresWithinRange(t *testing.T) {
	svc := New()
	names := []string{
		"Katrina", "Zzyzx", "Aiea", "Bob", "Tchaikovsky",
		"Led Zeppelin", "A", "Mississippi", "Krakatoa", "Lili",
	}

	for _, name := range names {
		f, err := svc.Extract(name)
		if err != nil {
			t.Fatalf("Extract(%q): %v", name, err)
		}
		checks := map[string]float64{
			"harshness":                 f.Harshness,
			"melodiousness":             f.Melodiousness,
			"consonant_cluster_density": f.ClusterDensity,
			"vowel_ratio":               f.VowelRatio,
			"memorability":              f.Memorability,
		}
		for key, v := range checks {
			if v < 0 || v > 1 {
				t.Errorf("Extract(%q): %s = %v, want [0,1]", name, key, v)
			}
		}
		if f.SyllableCount < 1 {
			t.Errorf("Extract(%q): syllable_count = %v, want >= 1", name, f.SyllableCount)
		}
	}
}

func TestExtract_SyllableCounting(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"Bob", 1},
		{"Anna", 2},
		{"Katrina", 3},
		{"Aiea", 1},     // consecutive vowels collapse
		{"Zzz", 1},      // vowel-less floor
		{"Oklahoma", 4},
	}
	svc := New()

	for _, tt := range tests {
		f, err := svc.Extract(tt.name)
		if err != nil {
			t.Fatalf("Extract(%q): %v", tt.name, err)
		}
		if f.SyllableCount != tt.want {
			t.Errorf("Extract(%q): syllable_count = %v, want %v", tt.name, f.SyllableCount, tt.want)
		}
	}
}

func TestExtract_HarshVersusMelodic(t *testing.T) {
	svc := New()

	harsh, err := svc.Extract("Kputkag")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	melodic, err := svc.Extract("Melora")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if harsh.Harshness <= melodic.Harshness {
		t.Errorf("harshness: plosive-heavy %v <= sonorant-heavy %v", harsh.Harshness, melodic.Harshness)
	}
	if harsh.Melodiousness >= melodic.Melodiousness {
		t.Errorf("melodiousness: plosive-heavy %v >= sonorant-heavy %v", harsh.Melodiousness, melodic.Melodiousness)
	}
}

// Short clipped names can score low on both axes; harshness and
// melodiousness are anti-correlated, not complementary.
func TestExtract_ShortClippedNameLowOnBothAxes(t *testing.T) {
	svc := New()

	f, err := svc.Extract("Wy")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if f.Harshness > 0.5 {
		t.Errorf("harshness = %v, want <= 0.5", f.Harshness)
	}
	if f.Melodiousness > 0.6 {
		t.Errorf("melodiousness = %v, want <= 0.6", f.Melodiousness)
	}
}

func TestExtract_ClusterDensity(t *testing.T) {
	svc := New()

	smooth, err := svc.Extract("Anona")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if smooth.ClusterDensity != 0 {
		t.Errorf("cluster density of alternating name = %v, want 0", smooth.ClusterDensity)
	}

	clustered, err := svc.Extract("Strengths")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if clustered.ClusterDensity <= 0 {
		t.Errorf("cluster density of %q = %v, want > 0", "Strengths", clustered.ClusterDensity)
	}
}

func TestExtract_AlliterationBoostsMemorability(t *testing.T) {
	svc := New()

	plain, err := svc.Extract("Robert Dylan")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	allit, err := svc.Extract("Duran Duran")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if allit.Memorability <= plain.Memorability {
		t.Errorf("memorability: alliterated %v <= plain %v", allit.Memorability, plain.Memorability)
	}
}
