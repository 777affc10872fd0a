// Package report defines the immutable output records of an analysis run.
package report

// Annotation values attached to per-feature results.
const (
	// AnnotationConstant marks a zero-variance feature column (r is NaN).
	AnnotationConstant = "constant"
	// AnnotationConstantOutcome marks a varying feature whose r is NaN only
	// because every outcome in the batch is identical.
	AnnotationConstantOutcome = "constant_outcome"
)

// Result is the correlation outcome for one (feature, outcome) pair.
type Result struct {
	Feature     string  `json:"feature"`
	R           float64 `json:"r"`
	PValue      float64 `json:"p_value"`
	N           int     `json:"n"`
	CILow       float64 `json:"ci_low"`
	CIHigh      float64 `json:"ci_high"`
	Significant bool    `json:"significant"`
	Annotation  string  `json:"annotation,omitempty"`
}

// Regression is the multivariate fit summary. Cross-validated R² is always
// reported alongside the training R², never in place of it.
type Regression struct {
	R2Train      float64            `json:"r2_train"`
	R2CV         float64            `json:"r2_cv"`
	Folds        int                `json:"folds"`
	Coefficients map[string]float64 `json:"coefficients,omitempty"`
	Intercept    float64            `json:"intercept"`
}

// Diagnostics records what happened to the batch: how many entities went in,
// how many survived to the statistics stage, and why the rest were skipped.
type Diagnostics struct {
	Entities    int            `json:"entities"`
	Analyzed    int            `json:"analyzed"`
	Skipped     int            `json:"skipped"`
	SkipReasons map[string]int `json:"skip_reasons,omitempty"`
	// DefaultedFields counts, per field name, the analyzed entities whose
	// value came from the schema fallback rather than the context record.
	DefaultedFields map[string]int `json:"defaulted_fields,omitempty"`
}

// Report is the full output of one analysis run.
type Report struct {
	Domain      string      `json:"domain,omitempty"`
	Results     []Result    `json:"results"`
	Regression  *Regression `json:"regression,omitempty"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// SignificantResults returns the subset of results flagged significant,
// preserving order.
func (r Report) SignificantResults() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Significant {
			out = append(out, res)
		}
	}
	return out
}

// ByFeature returns the result for a feature key.
func (r Report) ByFeature(key string) (Result, bool) {
	for _, res := range r.Results {
		if res.Feature == key {
			return res, true
		}
	}
	return Result{}, false
}
