// Package phonetic defines the fixed-schema acoustic descriptor record
// derived from a name string.
package phonetic

// Feature keys, in the fixed order they appear in composed vectors.
const (
	KeyHarshness      = "harshness"
	KeyMelodiousness  = "melodiousness"
	KeySyllableCount  = "syllable_count"
	KeyClusterDensity = "consonant_cluster_density"
	KeyVowelRatio     = "vowel_ratio"
	KeyMemorability   = "memorability"
)

// Keys lists every phonetic feature key in canonical order.
var Keys = []string{
	KeyHarshness,
	KeyMelodiousness,
	KeySyllableCount,
	KeyClusterDensity,
	KeyVowelRatio,
	KeyMemorability,
}

// Reserved reports whether a field name is taken by the phonetic schema and
// therefore unavailable to domain feature declarations.
func Reserved(name string) bool {
	return reserved[name]
}

var reserved = func() map[string]bool {
	m := make(map[string]bool, len(Keys)+2)
	for _, k := range Keys {
		m[k] = true
	}
	// Held back for the engine's own columns.
	m["outcome"] = true
	m["name"] = true
	return m
}()

// Features is the fixed-schema phonetic record for one name.
// All scores except SyllableCount are normalized to [0,1].
type Features struct {
	Harshness      float64
	Melodiousness  float64
	SyllableCount  float64
	ClusterDensity float64
	VowelRatio     float64
	Memorability   float64

	// Invalid marks the all-zero record produced for an empty name.
	Invalid bool
}

// Map returns the record keyed by canonical feature names.
func (f Features) Map() map[string]float64 {
	return map[string]float64{
		KeyHarshness:      f.Harshness,
		KeyMelodiousness:  f.Melodiousness,
		KeySyllableCount:  f.SyllableCount,
		KeyClusterDensity: f.ClusterDensity,
		KeyVowelRatio:     f.VowelRatio,
		KeyMemorability:   f.Memorability,
	}
}
