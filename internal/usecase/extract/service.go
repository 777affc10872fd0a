// Package extract converts a name string into the fixed-schema phonetic
// feature record. Extraction is pure and deterministic: same name, same
// output, no I/O.
package extract

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/nomen-research/nomen/internal/domain"
	"github.com/nomen-research/nomen/internal/domain/phonetic"
)

// Melodiousness and memorability blend weights.
const (
	melSonorantWeight = 0.55
	melVowelWeight    = 0.45

	memLengthWeight   = 0.45
	memSyllableWeight = 0.35
	memRepeatBonus    = 0.1
	memMaxRepeatBonus = 0.2
	memAllitBonus     = 0.15

	// memBaseLen is the name length scoring 1.0; every letter past it
	// costs 1/memLenSpan.
	memBaseLen  = 4
	memLenSpan  = 10.0
	memSyllVal  = 2.0 // numerator of the capped inverse syllable score
)

// Service computes phonetic features.
type Service struct{}

// New creates an extraction service.
func New() *Service { return &Service{} }

// Extract derives the phonetic record for a name. The empty name yields the
// zero record with Invalid set; a non-empty name with no alphabetic
// characters is an error.
func (s *Service) Extract(name string) (phonetic.Features, error) {
	if name == "" {
		return phonetic.Features{Invalid: true}, nil
	}

	words := tokenize(name)
	letters := flatten(words)
	if len(letters) == 0 {
		return phonetic.Features{}, fmt.Errorf("name %q has no alphabetic characters: %w", name, domain.ErrInvalidInput)
	}

	n := float64(len(letters))
	syllables := countSyllables(letters)

	var harshSum, vowels, sonorants float64
	for _, r := range letters {
		switch {
		case isVowel[r]:
			vowels++
		case isSonorant[r]:
			sonorants++
		default:
			harshSum += harshWeight[r]
		}
	}

	vowelRatio := vowels / n
	melodiousness := clamp01(melSonorantWeight*(sonorants/n) + melVowelWeight*vowelRatio)

	return phonetic.Features{
		Harshness:      clamp01(harshSum / n),
		Melodiousness:  melodiousness,
		SyllableCount:  float64(syllables),
		ClusterDensity: clamp01(float64(countClusters(letters)) / n),
		VowelRatio:     vowelRatio,
		Memorability:   memorability(words, letters, syllables),
	}, nil
}

// tokenize lowercases the name and splits it into words of Latin letters,
// dropping everything else.
func tokenize(name string) [][]rune {
	var words [][]rune
	var cur []rune
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' {
			cur = append(cur, r)
			continue
		}
		if unicode.IsLetter(r) {
			// Non-ASCII letters are dropped without splitting the word;
			// the heuristic tables only cover a-z.
			continue
		}
		if len(cur) > 0 {
			words = append(words, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		words = append(words, cur)
	}
	return words
}

func flatten(words [][]rune) []rune {
	var out []rune
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}

// countSyllables counts vowel-group runs; consecutive vowels collapse into
// one syllable. A vowel-less name still counts as one syllable.
func countSyllables(letters []rune) int {
	count := 0
	inRun := false
	for _, r := range letters {
		if isVowel[r] {
			if !inRun {
				count++
			}
			inRun = true
		} else {
			inRun = false
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

// countClusters counts runs of two or more consecutive consonants.
func countClusters(letters []rune) int {
	count := 0
	run := 0
	for _, r := range letters {
		if isVowel[r] {
			run = 0
			continue
		}
		run++
		if run == 2 {
			count++
		}
	}
	return count
}

// memorability blends inverse length, capped inverse syllable count, and a
// bonus for repeated letter patterns (alliteration across words, repeated
// bigrams within the name).
func memorability(words [][]rune, letters []rune, syllables int) float64 {
	lengthScore := clamp01(1 - (float64(len(letters))-memBaseLen)/memLenSpan)
	syllableScore := math.Min(1, memSyllVal/float64(syllables))

	bonus := 0.0
	if alliterates(words) {
		bonus += memAllitBonus
	}
	bonus += math.Min(memMaxRepeatBonus, float64(repeatedBigrams(letters))*memRepeatBonus)

	return clamp01(memLengthWeight*lengthScore + memSyllableWeight*syllableScore + bonus)
}

// alliterates reports whether at least two words share a first letter.
func alliterates(words [][]rune) bool {
	seen := make(map[rune]bool, len(words))
	for _, w := range words {
		if len(w) == 0 {
			continue
		}
		if seen[w[0]] {
			return true
		}
		seen[w[0]] = true
	}
	return false
}

// repeatedBigrams counts distinct two-letter sequences occurring more than
// once.
func repeatedBigrams(letters []rune) int {
	if len(letters) < 4 {
		return 0
	}
	counts := make(map[string]int)
	for i := 0; i+1 < len(letters); i++ {
		counts[string(letters[i:i+2])]++
	}
	repeated := 0
	for _, c := range counts {
		if c > 1 {
			repeated++
		}
	}
	return repeated
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
