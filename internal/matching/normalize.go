package matching

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	processorPrefix = regexp.MustCompile(`^(?:sq|square|tst|toast|paypal|venmo|zelle|cash app)\s*\*\s*`)
	storeNumber     = regexp.MustCompile(`#\s*\d+`)
	trailingDigits  = regexp.MustCompile(`\s\d{4,}$`)
)

// builtinAliases maps common bank-statement abbreviations to merchant names.
var builtinAliases = map[string]string{
	"amzn":      "amazon",
	"amzn mktp": "amazon",
	"wmt":       "walmart",
	"wal mart":  "walmart",
	"sbux":      "starbucks",
	"wholefds":  "whole foods",
	"mcd":       "mcdonalds",
	"tgt":       "target",
}

// Normalizer canonicalizes merchant text for comparison.
type Normalizer struct {
	aliases map[string]string
	keys    []string // longest first
}

// NewNormalizer builds a normalizer with the built-in aliases plus learned
// ones. Learned aliases win over built-ins with the same key.
func NewNormalizer(learned map[string]string) *Normalizer {
	n := &Normalizer{aliases: make(map[string]string, len(builtinAliases)+len(learned))}

	for k, v := range builtinAliases {
		n.aliases[k] = v
	}

	for k, v := range learned {
		k, v = clean(k), clean(v)
		if k == "" || v == "" {
			continue
		}

		n.aliases[k] = v
	}

	for k := range n.aliases {
		n.keys = append(n.keys, k)
	}

	slices.SortFunc(n.keys, func(a, b string) int {
		if d := len(b) - len(a); d != 0 {
			return d
		}

		return strings.Compare(a, b)
	})

	return n
}

// Normalize lowercases, folds accents, drops payment-processor prefixes,
// store numbers and punctuation, then resolves aliases.
func (n *Normalizer) Normalize(s string) string {
	s = clean(s)

	for _, k := range n.keys {
		if s == k || strings.HasPrefix(s, k+" ") {
			return n.aliases[k]
		}
	}

	return s
}

func clean(s string) string {
	s = foldAccents(strings.ToLower(strings.TrimSpace(s)))
	s = processorPrefix.ReplaceAllString(s, "")
	s = storeNumber.ReplaceAllString(s, " ")
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return ' '
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	return trailingDigits.ReplaceAllString(s, "")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return out
}
