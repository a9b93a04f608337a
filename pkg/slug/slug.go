package slug

import (
	"crypto/rand"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Option configures slug generation.
type Option func(*config)

type config struct {
	maxLength    int
	separator    string
	suffixLength int
}

// MaxLength caps the total slug length, suffix included. Zero means no
// limit.
func MaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = n
	}
}

// Separator sets the character joining words. Default is "-"; use "_"
// for identifiers that must stay valid PostgreSQL names.
func Separator(s string) Option {
	return func(c *config) {
		c.separator = s
	}
}

// WithSuffix appends a random alphanumeric suffix of the given length,
// separated by the configured separator. The suffix survives MaxLength
// truncation: the base is shortened to make room for it.
func WithSuffix(length int) Option {
	return func(c *config) {
		c.suffixLength = length
	}
}

// Make normalizes s into a lowercase label containing only [a-z0-9]
// and the separator. Diacritics fold to ASCII, everything else
// collapses into single separators. The output is safe for subdomains
// (separator "-") and PostgreSQL schema names (separator "_").
func Make(s string, opts ...Option) string {
	cfg := &config{separator: "-"}
	for _, opt := range opts {
		opt(cfg)
	}

	s = foldSpecial.Replace(strings.ToLower(s))
	s = stripMarks(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteString(cfg.separator)
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	base := b.String()

	if cfg.suffixLength <= 0 {
		return truncate(base, cfg.maxLength, cfg.separator)
	}

	suffix := randomSuffix(cfg.suffixLength)
	if cfg.maxLength > 0 {
		if cfg.suffixLength >= cfg.maxLength {
			return suffix[:cfg.maxLength]
		}
		base = truncate(base, cfg.maxLength-cfg.suffixLength-len(cfg.separator), cfg.separator)
	}
	if base == "" {
		return suffix
	}
	return base + cfg.separator + suffix
}

// truncate cuts s to at most n bytes and strips dangling separators.
// The base alphabet is ASCII by construction, so byte slicing is safe.
func truncate(s string, n int, sep string) string {
	if n > 0 && len(s) > n {
		s = s[:n]
	}
	if sep != "" {
		s = strings.TrimRight(s, sep)
	}
	return s
}

// foldSpecial maps letters that survive Unicode decomposition because
// they are standalone code points, not base letters with marks.
var foldSpecial = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"đ", "d",
	"ð", "d",
	"ł", "l",
	"þ", "th",
)

// stripMarks folds diacritics to their base letters: the string is
// decomposed, combining marks are removed, and the rest is recomposed.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		// Degrade to a constant suffix rather than fail slug creation.
		for i := range b {
			b[i] = suffixAlphabet[i%len(suffixAlphabet)]
		}
		return string(b)
	}
	for i := range b {
		b[i] = suffixAlphabet[b[i]%byte(len(suffixAlphabet))]
	}
	return string(b)
}
