// Package bucket partitions the consolidated catalog into shard files
// keyed by a 2-character prefix of the normalized game name, so
// consumers can do prefix lookups without loading the whole dataset.
package bucket

import (
	"strings"
	"unicode"
)

// filler pads keys derived from names shorter than 2 usable characters.
const filler = '0'

// Key derives the bucket key for a game name: lower-case, strip
// everything that is not a Unicode letter or number, take the first
// two characters, pad with '0' to exactly two. Pure and deterministic;
// identical names always land in the same bucket.
//
// IsNumber rather than IsDigit: numeric forms like roman numerals or
// vulgar fractions count as usable characters too.
//
// An empty (or missing) name yields "00".
func Key(name string) string {
	name = strings.ToLower(name)

	runes := make([]rune, 0, 2)
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			runes = append(runes, r)
			if len(runes) == 2 {
				break
			}
		}
	}
	for len(runes) < 2 {
		runes = append(runes, filler)
	}
	return string(runes)
}

// SubdirFor maps a bucket key to its fan-out subdirectory: the key's
// first character, with anything non-alphanumeric grouped under "0".
func SubdirFor(key string) string {
	if key == "" {
		return "0"
	}
	first := []rune(key)[0]
	if !unicode.IsLetter(first) && !unicode.IsNumber(first) {
		return "0"
	}
	return string(first)
}
