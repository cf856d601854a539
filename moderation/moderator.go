package moderation

import (
	"unicode"

	"github.com/abadojack/whatlanggo"
	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator decides whether a message contains a blacklisted word.
// The matcher works on a normalized view of the text so that leet
// speak, punctuation, and spacing tricks do not slip through.
type Moderator struct {
	matcher *goahocorasick.Machine
}

// NewModerator builds the Aho-Corasick automaton from a normalized
// version of the provided word list.
func NewModerator(words []string) (Moderator, error) {
	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = normalizeRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: m}, nil
}

// IsProfane reports whether the text matches any blacklisted pattern.
// It never mutates the text; rejection is the caller's decision.
func (m *Moderator) IsProfane(text string) bool {
	normalized := normalizeRunes([]rune(text))
	if len(normalized) == 0 {
		return false
	}
	return len(m.matcher.MultiPatternSearch(normalized, true)) > 0
}

// Language gives a best-effort ISO 639-3 code for the text, used to
// tag rejections in logs. Unreliable detections come back empty.
func Language(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6393()
}

// normalizeRunes applies leet-speak simplification and noise removal.
func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps common leet speak characters back to their standard alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies characters ignored during pattern matching.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
