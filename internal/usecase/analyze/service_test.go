package analyze

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/nomen-research/nomen/internal/domain"
	"github.com/nomen-research/nomen/internal/domain/report"
	"github.com/nomen-research/nomen/internal/domain/vector"
)

func vectorsFrom(t *testing.T, feature string, values []float64) []vector.Vector {
	t.Helper()
	out := make([]vector.Vector, len(values))
	for i, v := range values {
		out[i] = vector.New("e", map[string]float64{feature: v})
	}
	return out
}

func TestAnalyze_InsufficientSample(t *testing.T) {
	svc := New()
	vectors := vectorsFrom(t, "harshness", []float64{0.1, 0.9})

	_, err := svc.Analyze(vectors, []float64{1, 2})
	if !errors.Is(err, domain.ErrInsufficientSample) {
		t.Fatalf("Analyze: err = %v, want ErrInsufficientSample", err)
	}

	var sample *domain.InsufficientSampleError
	if !errors.As(err, &sample) {
		t.Fatalf("Analyze: err %T does not unwrap to InsufficientSampleError", err)
	}
	if sample.Got != 2 || sample.Need != 3 {
		t.Errorf("InsufficientSampleError = %+v, want Got=2 Need=3", sample)
	}
}

func TestAnalyze_LengthMismatch(t *testing.T) {
	svc := New()
	vectors := vectorsFrom(t, "harshness", []float64{0.1, 0.5, 0.9})

	_, err := svc.Analyze(vectors, []float64{1, 2})
	if !errors.Is(err, domain.ErrInsufficientSample) {
		t.Fatalf("Analyze: err = %v, want ErrInsufficientSample", err)
	}
}

// The monotone end-to-end dataset: harshness strongly tracks outcome, so the
// engine must call it a significant strong correlation.
func TestAnalyze_MonotoneDataset(t *testing.T) {
	svc := New()
	harshness := []float64{0.9, 0.85, 0.8, 0.75, 0.7, 0.3, 0.25, 0.2, 0.15, 0.1}
	outcomes := []float64{9, 8, 8, 7, 6, 3, 3, 2, 2, 1}

	rep, err := svc.Analyze(vectorsFrom(t, "harshness", harshness), outcomes)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	res, ok := rep.ByFeature("harshness")
	if !ok {
		t.Fatal("no result for harshness")
	}
	if res.R <= 0.9 {
		t.Errorf("r = %v, want > 0.9", res.R)
	}
	if res.PValue >= 0.01 {
		t.Errorf("p = %v, want < 0.01", res.PValue)
	}
	if !res.Significant {
		t.Error("significant = false, want true")
	}
	if res.N != 10 {
		t.Errorf("n = %d, want 10", res.N)
	}
	if res.CILow <= 0 {
		t.Errorf("ci_low = %v, want > 0 for a strong positive correlation", res.CILow)
	}
}

func TestAnalyze_ConstantColumn(t *testing.T) {
	svc := New()
	vectors := []vector.Vector{
		vector.New("a", map[string]float64{"flat": 1, "live": 0.1}),
		vector.New("b", map[string]float64{"flat": 1, "live": 0.5}),
		vector.New("c", map[string]float64{"flat": 1, "live": 0.9}),
		vector.New("d", map[string]float64{"flat": 1, "live": 0.7}),
	}
	outcomes := []float64{1, 2, 3, 4}

	rep, err := svc.Analyze(vectors, outcomes)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	flat, _ := rep.ByFeature("flat")
	if !math.IsNaN(flat.R) {
		t.Errorf("constant column r = %v, want NaN", flat.R)
	}
	if flat.Annotation != report.AnnotationConstant {
		t.Errorf("annotation = %q, want %q", flat.Annotation, report.AnnotationConstant)
	}
	if flat.Significant {
		t.Error("constant column flagged significant")
	}

	// Other features must still be reported.
	if _, ok := rep.ByFeature("live"); !ok {
		t.Error("live column missing from report")
	}
}

func TestAnalyze_ConstantOutcome(t *testing.T) {
	svc := New()
	vectors := []vector.Vector{
		vector.New("a", map[string]float64{"flat": 1, "live": 0.1}),
		vector.New("b", map[string]float64{"flat": 1, "live": 0.5}),
		vector.New("c", map[string]float64{"flat": 1, "live": 0.9}),
		vector.New("d", map[string]float64{"flat": 1, "live": 0.7}),
	}
	outcomes := []float64{2, 2, 2, 2}

	rep, err := svc.Analyze(vectors, outcomes)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	live, _ := rep.ByFeature("live")
	if !math.IsNaN(live.R) {
		t.Errorf("r = %v against constant outcomes, want NaN", live.R)
	}
	if live.Annotation != report.AnnotationConstantOutcome {
		t.Errorf("varying column annotation = %q, want %q", live.Annotation, report.AnnotationConstantOutcome)
	}

	// The constant column keeps its own annotation.
	flat, _ := rep.ByFeature("flat")
	if flat.Annotation != report.AnnotationConstant {
		t.Errorf("constant column annotation = %q, want %q", flat.Annotation, report.AnnotationConstant)
	}
}

func TestAnalyze_ReproducibleWithFixedSeed(t *testing.T) {
	harshness := []float64{0.9, 0.7, 0.5, 0.4, 0.3, 0.2, 0.1}
	outcomes := []float64{7, 6, 4, 5, 3, 2, 1}

	first, err := New().WithSeed(99).Analyze(vectorsFrom(t, "harshness", harshness), outcomes)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := New().WithSeed(99).Analyze(vectorsFrom(t, "harshness", harshness), outcomes)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	a := first.Results[0]
	b := second.Results[0]
	if a.CILow != b.CILow || a.CIHigh != b.CIHigh {
		t.Errorf("same seed produced different CIs: (%v,%v) vs (%v,%v)", a.CILow, a.CIHigh, b.CILow, b.CIHigh)
	}
}

// Unrelated random feature/outcome pairs must not produce strong
// correlations in the overwhelming majority of trials.
func TestAnalyze_RandomOutcomesStayWeak(t *testing.T) {
	const trials = 60
	gen := rand.New(rand.NewSource(7))

	weak := 0
	for trial := 0; trial < trials; trial++ {
		feature := make([]float64, 10)
		outcomes := make([]float64, 10)
		for i := range feature {
			feature[i] = gen.Float64()
			outcomes[i] = gen.Float64() * 10
		}

		svc := New().WithResamples(200).WithSeed(int64(trial))
		rep, err := svc.Analyze(vectorsFrom(t, "noise", feature), outcomes)
		if err != nil {
			t.Fatalf("Analyze trial %d: %v", trial, err)
		}
		if math.Abs(rep.Results[0].R) < 0.5 {
			weak++
		}
	}

	if weak < trials*2/3 {
		t.Errorf("only %d/%d trials had |r| < 0.5", weak, trials)
	}
}
