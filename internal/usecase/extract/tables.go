package extract

// Fixed Latin-script classification tables. These are heuristic acoustic
// classes over letters, not validated phonology: plosives and hard
// fricatives carry the highest harshness weight, soft fricatives less,
// sonorants and vowels none.

var isVowel = map[rune]bool{
	'a': true, 'e': true, 'i': true, 'o': true, 'u': true, 'y': true,
}

// harshWeight is the per-letter contribution to the harshness score.
var harshWeight = map[rune]float64{
	// plosives
	'k': 1.0, 't': 1.0, 'p': 1.0,
	'g': 0.85, 'd': 0.85, 'b': 0.85,
	'c': 0.9, 'q': 0.9,
	// hard fricatives
	'x': 0.8, 'z': 0.8, 'j': 0.6,
	// soft fricatives
	'f': 0.55, 's': 0.55, 'v': 0.55, 'h': 0.4,
}

// isSonorant marks the liquid/nasal consonants that feed melodiousness.
var isSonorant = map[rune]bool{
	'm': true, 'n': true, 'l': true, 'r': true, 'w': true,
}
