// Package analyze is the correlation and regression engine: per-feature
// Pearson statistics with bootstrap confidence intervals, plus an optional
// multivariate OLS fit with cross-validation.
package analyze

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/nomen-research/nomen/internal/domain"
	"github.com/nomen-research/nomen/internal/domain/report"
	"github.com/nomen-research/nomen/internal/domain/vector"
)

// Engine defaults.
const (
	// minSample is the floor below which Pearson correlation and its
	// significance test are degenerate.
	minSample = 3

	// DefaultResamples is the default bootstrap resample count.
	DefaultResamples = 1000
	// DefaultSeed is the fixed default bootstrap seed; runs are
	// reproducible unless the caller overrides it.
	DefaultSeed int64 = 271828
	// DefaultCVFolds is the default cross-validation fold count.
	DefaultCVFolds = 5

	// significanceLevel is the p-value threshold. Significance also
	// requires the bootstrap CI to exclude zero.
	significanceLevel = 0.05
)

// Service runs correlation and regression statistics over composed vectors.
type Service struct {
	resamples  int
	seed       int64
	folds      int
	regression bool
}

// New creates an analysis engine with default settings.
func New() *Service {
	return &Service{
		resamples: DefaultResamples,
		seed:      DefaultSeed,
		folds:     DefaultCVFolds,
	}
}

// WithResamples configures the bootstrap resample count.
func (s *Service) WithResamples(n int) *Service {
	if n > 0 {
		s.resamples = n
	}
	return s
}

// WithSeed configures the bootstrap seed.
func (s *Service) WithSeed(seed int64) *Service {
	s.seed = seed
	return s
}

// WithCVFolds configures the cross-validation fold count.
func (s *Service) WithCVFolds(k int) *Service {
	if k > 1 {
		s.folds = k
	}
	return s
}

// WithRegression enables the multivariate OLS fit.
func (s *Service) WithRegression(enabled bool) *Service {
	s.regression = enabled
	return s
}

// Analyze computes one CorrelationResult per feature key across the batch.
// Vectors must already be schema-aligned; the first vector's key order is
// the report order.
func (s *Service) Analyze(vectors []vector.Vector, outcomes []float64) (report.Report, error) {
	if len(vectors) != len(outcomes) {
		return report.Report{}, fmt.Errorf(
			"vectors (%d) and outcomes (%d) differ in length: %w",
			len(vectors), len(outcomes), domain.ErrInsufficientSample)
	}
	n := len(vectors)
	if n < minSample {
		return report.Report{}, domain.NewInsufficientSample(n, minSample)
	}

	keys := vectors[0].Keys()
	results := make([]report.Result, 0, len(keys))
	for i, key := range keys {
		col := column(vectors, key)
		results = append(results, s.analyzeFeature(key, i, col, outcomes))
	}

	rep := report.Report{Results: results}
	if s.regression {
		reg, err := s.fitRegression(keys, vectors, outcomes)
		if err != nil {
			return report.Report{}, err
		}
		rep.Regression = reg
	}
	return rep, nil
}

// analyzeFeature computes one feature's correlation result. Each feature
// gets its own rng stream derived from the base seed and the feature's
// position, so adding a resample to one feature never shifts another's.
func (s *Service) analyzeFeature(key string, pos int, col, outcomes []float64) report.Result {
	n := len(col)
	r := pearson(col, outcomes)

	if math.IsNaN(r) {
		// A NaN r means at least one side has zero variance. Blame the
		// feature column only when it is actually the constant one.
		annotation := report.AnnotationConstant
		if variance(col) > 0 {
			annotation = report.AnnotationConstantOutcome
		}
		return report.Result{
			Feature:    key,
			R:          math.NaN(),
			PValue:     math.NaN(),
			N:          n,
			CILow:      math.NaN(),
			CIHigh:     math.NaN(),
			Annotation: annotation,
		}
	}

	p := pValueForR(r, n)
	rng := rand.New(rand.NewSource(s.seed + int64(pos)))
	lo, hi := bootstrapCI(rng, col, outcomes, s.resamples)

	significant := p < significanceLevel && excludesZero(lo, hi)

	return report.Result{
		Feature:     key,
		R:           r,
		PValue:      p,
		N:           n,
		CILow:       lo,
		CIHigh:      hi,
		Significant: significant,
	}
}

// fitRegression fits outcome on the full feature set. Constant columns
// cannot carry signal and would make the normal equations singular, so they
// are excluded from the design matrix; their per-feature results already
// carry the constant annotation.
func (s *Service) fitRegression(
	keys []string, vectors []vector.Vector, outcomes []float64,
) (*report.Regression, error) {
	var designKeys []string
	for _, key := range keys {
		if variance(column(vectors, key)) > 0 {
			designKeys = append(designKeys, key)
		}
	}
	if len(designKeys) == 0 {
		return &report.Regression{
			R2Train: math.NaN(), R2CV: math.NaN(), Folds: s.folds,
		}, nil
	}

	rows := make([][]float64, len(vectors))
	for i, v := range vectors {
		row := make([]float64, len(designKeys))
		for j, key := range designKeys {
			row[j], _ = v.Value(key)
		}
		rows[i] = row
	}

	beta, err := fitOLS(rows, outcomes)
	if err != nil {
		return nil, fmt.Errorf("fit regression: %w", err)
	}

	preds := make([]float64, len(rows))
	for i, row := range rows {
		preds[i] = predict(beta, row)
	}

	coefs := make(map[string]float64, len(designKeys))
	for j, key := range designKeys {
		coefs[key] = beta[j+1]
	}

	return &report.Regression{
		R2Train:      rSquared(outcomes, preds),
		R2CV:         crossValidateR2(rows, outcomes, s.folds),
		Folds:        s.folds,
		Coefficients: coefs,
		Intercept:    beta[0],
	}, nil
}

func column(vectors []vector.Vector, key string) []float64 {
	col := make([]float64, len(vectors))
	for i, v := range vectors {
		col[i], _ = v.Value(key)
	}
	return col
}

func excludesZero(lo, hi float64) bool {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return false
	}
	return lo > 0 || hi < 0
}
