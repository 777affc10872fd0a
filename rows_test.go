package nomen

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type hurricaneRow struct {
	Name     string  `nomen:"name,name"`
	Year     int     `nomen:"-"`
	Deaths   float64 `nomen:"historical_deaths,feature"`
	Category int     `nomen:"category,feature"`
	Damage   float64 `nomen:",outcome"`
}

func newRowAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(WithBootstrapResamples(200))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestNewRowSet_ParsesTags(t *testing.T) {
	rs, err := NewRowSet[hurricaneRow](newRowAnalyzer(t), "hurricane")
	if err != nil {
		t.Fatalf("NewRowSet: %v", err)
	}
	if rs.meta.nameIdx != 0 {
		t.Errorf("nameIdx = %d, want 0", rs.meta.nameIdx)
	}
	if rs.meta.idIdx != -1 {
		t.Errorf("idIdx = %d, want -1", rs.meta.idIdx)
	}
	if rs.meta.outcomeIdx != 4 {
		t.Errorf("outcomeIdx = %d, want 4", rs.meta.outcomeIdx)
	}
	if len(rs.meta.features) != 2 {
		t.Fatalf("features = %d, want 2", len(rs.meta.features))
	}
	if rs.meta.features[0].name != "historical_deaths" {
		t.Errorf("feature name = %q", rs.meta.features[0].name)
	}
}

func TestNewRowSet_RejectsBadStructs(t *testing.T) {
	a := newRowAnalyzer(t)

	t.Run("missing name", func(t *testing.T) {
		type row struct {
			Outcome float64 `nomen:",outcome"`
		}
		if _, err := NewRowSet[row](a, "d"); err == nil || !strings.Contains(err.Error(), "name") {
			t.Errorf("err = %v, want name-tag error", err)
		}
	})

	t.Run("missing outcome", func(t *testing.T) {
		type row struct {
			Name string `nomen:",name"`
		}
		if _, err := NewRowSet[row](a, "d"); err == nil || !strings.Contains(err.Error(), "outcome") {
			t.Errorf("err = %v, want outcome-tag error", err)
		}
	})

	t.Run("duplicate role", func(t *testing.T) {
		type row struct {
			A       string  `nomen:",name"`
			B       string  `nomen:",name"`
			Outcome float64 `nomen:",outcome"`
		}
		if _, err := NewRowSet[row](a, "d"); err == nil || !strings.Contains(err.Error(), "duplicate") {
			t.Errorf("err = %v, want duplicate-tag error", err)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		type row struct {
			Name    string  `nomen:",name"`
			Outcome float64 `nomen:",outcome"`
			X       float64 `nomen:"x,weight"`
		}
		if _, err := NewRowSet[row](a, "d"); err == nil || !strings.Contains(err.Error(), "unknown role") {
			t.Errorf("err = %v, want unknown-role error", err)
		}
	})

	t.Run("reserved feature name", func(t *testing.T) {
		type row struct {
			Name    string  `nomen:",name"`
			Outcome float64 `nomen:",outcome"`
			X       float64 `nomen:"harshness,feature"`
		}
		if _, err := NewRowSet[row](a, "d"); err == nil {
			t.Error("expected error for feature shadowing a phonetic key")
		}
	})

	t.Run("non-struct", func(t *testing.T) {
		if _, err := NewRowSet[int](a, "d"); err == nil {
			t.Error("expected error for non-struct type")
		}
	})
}

func TestRowSet_Analyze(t *testing.T) {
	rs, err := NewRowSet[hurricaneRow](newRowAnalyzer(t), "hurricane")
	if err != nil {
		t.Fatalf("NewRowSet: %v", err)
	}

	rows := []hurricaneRow{
		{Name: "Katrina", Deaths: 1833, Category: 5, Damage: 125.0},
		{Name: "Bob", Deaths: 17, Category: 3, Damage: 1.5},
		{Name: "Ida", Deaths: 107, Category: 4, Damage: 75.0},
		{Name: "Sandy", Deaths: 233, Category: 3, Damage: 68.7},
		{Name: "Andrew", Deaths: 65, Category: 5, Damage: 27.3},
	}

	report, err := rs.Analyze(context.Background(), rows)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Domain != "hurricane" {
		t.Errorf("Domain = %q, want hurricane", report.Domain)
	}
	if report.Diagnostics.Analyzed != len(rows) {
		t.Errorf("Analyzed = %d, want %d", report.Diagnostics.Analyzed, len(rows))
	}

	for _, want := range []string{"harshness", "historical_deaths", "category"} {
		if _, ok := report.ByFeature(want); !ok {
			t.Errorf("missing result for feature %q", want)
		}
	}

	// Deaths track damage almost monotonically in this batch.
	deaths, _ := report.ByFeature("historical_deaths")
	if deaths.R <= 0 {
		t.Errorf("historical_deaths r = %v, want positive", deaths.R)
	}
}

func TestRowSet_Analyze_DuplicateNamesWithoutID(t *testing.T) {
	rs, err := NewRowSet[hurricaneRow](newRowAnalyzer(t), "hurricane")
	if err != nil {
		t.Fatalf("NewRowSet: %v", err)
	}

	// Atlantic names repeat across seasons; without an id tag the second
	// Bob would silently shadow the first.
	_, err = rs.Analyze(context.Background(), []hurricaneRow{
		{Name: "Bob", Year: 1985, Deaths: 0, Category: 1, Damage: 0.2},
		{Name: "Katrina", Deaths: 1833, Category: 5, Damage: 125.0},
		{Name: "Bob", Year: 1991, Deaths: 17, Category: 3, Damage: 1.5},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if !strings.Contains(err.Error(), "duplicate entity id") {
		t.Errorf("err = %v, want duplicate entity id message", err)
	}
}

func TestRowSet_Analyze_DuplicateNamesWithID(t *testing.T) {
	type row struct {
		ID      string  `nomen:",id"`
		Name    string  `nomen:",name"`
		Deaths  float64 `nomen:"historical_deaths,feature"`
		Outcome float64 `nomen:",outcome"`
	}
	rs, err := NewRowSet[row](newRowAnalyzer(t), "hurricane")
	if err != nil {
		t.Fatalf("NewRowSet: %v", err)
	}

	rep, err := rs.Analyze(context.Background(), []row{
		{ID: "bob-1985", Name: "Bob", Deaths: 0, Outcome: 0.2},
		{ID: "katrina-2005", Name: "Katrina", Deaths: 1833, Outcome: 125.0},
		{ID: "bob-1991", Name: "Bob", Deaths: 17, Outcome: 1.5},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Diagnostics.Analyzed != 3 {
		t.Errorf("Analyzed = %d, want 3", rep.Diagnostics.Analyzed)
	}
}

func TestRowSet_Analyze_Deterministic(t *testing.T) {
	rows := []hurricaneRow{
		{Name: "Katrina", Deaths: 1833, Category: 5, Damage: 125.0},
		{Name: "Bob", Deaths: 17, Category: 3, Damage: 1.5},
		{Name: "Ida", Deaths: 107, Category: 4, Damage: 75.0},
		{Name: "Sandy", Deaths: 233, Category: 3, Damage: 68.7},
	}

	run := func() Report {
		t.Helper()
		rs, err := NewRowSet[hurricaneRow](newRowAnalyzer(t), "hurricane")
		if err != nil {
			t.Fatalf("NewRowSet: %v", err)
		}
		rep, err := rs.Analyze(context.Background(), rows)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		return rep
	}

	first, second := run(), run()
	for _, ra := range first.Results {
		rb, ok := second.ByFeature(ra.Feature)
		if !ok {
			t.Fatalf("feature %q missing from second run", ra.Feature)
		}
		if ra.CILow != rb.CILow || ra.CIHigh != rb.CIHigh || ra.PValue != rb.PValue {
			t.Errorf("feature %q differs across runs: %+v vs %+v", ra.Feature, ra, rb)
		}
	}
}

func TestToFloat64(t *testing.T) {
	type row struct {
		Name string  `nomen:",name"`
		I    int     `nomen:"i,feature"`
		U    uint8   `nomen:"u,feature"`
		F    float32 `nomen:"f,feature"`
		Out  float64 `nomen:",outcome"`
	}
	rs, err := NewRowSet[row](newRowAnalyzer(t), "d")
	if err != nil {
		t.Fatalf("NewRowSet: %v", err)
	}

	_, _, _, features := rs.meta.read(row{Name: "x", I: -3, U: 200, F: 1.5, Out: 9})
	if features["i"] != -3 || features["u"] != 200 || features["f"] != 1.5 {
		t.Errorf("features = %v", features)
	}
}
