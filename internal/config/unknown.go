package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

// knownKeys are the valid keys of each section.
var knownKeys = map[string][]string{
	"auth":    {"client_secret_file", "client_id", "client_secret", "token_file", "scopes"},
	"export":  {"file_id", "mime_type", "output", "chunk_size"},
	"fetch":   {"url", "key"},
	"logging": {"log_level"},
	"network": {"timeout", "user_agent", "drive_endpoint"},
}

// knownSections is the sorted list of section names, for deterministic
// suggestions when two candidates have the same edit distance.
var knownSections = func() []string {
	sections := make([]string, 0, len(knownKeys))
	for s := range knownKeys {
		sections = append(sections, s)
	}

	sort.Strings(sections)

	return sections
}()

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns
// an error with "did you mean?" suggestions for each unknown key. An unknown
// section is reported once, not once per key inside it.
func checkUnknownKeys(md *toml.MetaData) error {
	var errs []error

	reported := make(map[string]bool)

	for _, key := range md.Undecoded() {
		if _, known := knownKeys[key[0]]; !known {
			if reported[key[0]] {
				continue
			}

			reported[key[0]] = true
		}

		errs = append(errs, unknownKeyError(key))
	}

	return errors.Join(errs...)
}

// unknownKeyError describes one undecoded key. A top-level key that belongs
// to a section (a flat "chunk_size") points at that section.
func unknownKeyError(key toml.Key) error {
	candidates, ok := knownKeys[key[0]]
	if !ok || len(key) == 1 {
		return unknownTopLevelError(key[0])
	}

	section, field := key[0], strings.Join(key[1:], ".")

	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	if suggestion := closestMatch(key[1], sorted); suggestion != "" {
		return fmt.Errorf("unknown config key %q in [%s], did you mean %q?", field, section, suggestion)
	}

	return fmt.Errorf("unknown config key %q in [%s]", field, section)
}

func unknownTopLevelError(name string) error {
	for _, section := range knownSections {
		for _, k := range knownKeys[section] {
			if k == name {
				return fmt.Errorf("unknown config key %q, did you mean to put it under [%s]?", name, section)
			}
		}
	}

	if suggestion := closestMatch(name, knownSections); suggestion != "" {
		return fmt.Errorf("unknown config key %q, did you mean [%s]?", name, suggestion)
	}

	return fmt.Errorf("unknown config key %q", name)
}

// closestMatch finds the closest known key by Levenshtein distance.
// Returns empty string if no match is within maxLevenshteinDistance.
func closestMatch(unknown string, known []string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, k := range known {
		d := levenshtein(unknown, k)
		if d < bestDist {
			bestDist = d
			best = k
		}
	}

	if bestDist <= maxLevenshteinDistance {
		return best
	}

	return ""
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}

	if b == "" {
		return len(a)
	}

	// Single-row optimization.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := range len(a) {
		curr[0] = i + 1

		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}
