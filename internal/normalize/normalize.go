// Package normalize canonicalizes user-supplied catalog text: slugs, ISBNs,
// author names, keyword lists and synopses.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/text/unicode/norm"
)

// FallbackSlug is used when a name has no alphanumeric characters.
const FallbackSlug = "item"

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	htmlTagPattern  = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)
)

// Slugify converts a display name into a URL-safe slug.
//
//	"Science Fiction"    -> "science-fiction"
//	"The Reader's Guide" -> "the-reader-s-guide"
//	"Café Society"       -> "cafe-society"
//	"!!!"                -> "item"
func Slugify(s string) string {
	if slug := slugBase(s); slug != "" {
		return slug
	}
	return FallbackSlug
}

// HasSlug reports whether s slugifies without falling back to FallbackSlug.
func HasSlug(s string) bool {
	return slugBase(s) != ""
}

func slugBase(s string) string {
	// Decompose accents so "é" becomes "e" plus a dropped combining mark.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ISBN keeps only digits and the X check character, uppercased.
// Returns false when nothing remains. Applying it twice is a no-op.
//
//	"978-3-16-148410-0" -> "9783161484100"
//	"0-306-40615-x"     -> "030640615X"
//	"ISBN: "            -> "", false
func ISBN(s string) (string, bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteByte('X')
		}
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

// ISBNPtr is ISBN for optional input, returning nil when absent or empty.
func ISBNPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v, ok := ISBN(*s)
	if !ok {
		return nil
	}
	return &v
}

// Name trims and collapses internal whitespace.
func Name(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NameKey is the case-insensitive comparison key for a name.
func NameKey(s string) string {
	return strings.ToLower(Name(s))
}

// Keywords trims each entry, drops entries with no letter or digit and removes duplicates that
// share a slug. The first spelling wins and input order is kept.
func Keywords(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = Name(n)
		if !HasSlug(n) {
			continue
		}
		slug := Slugify(n)
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Truncate limits s to max runes.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if len(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// Synopsis converts HTML descriptions to Markdown, trims them and caps the
// result at maxRunes.
func Synopsis(s string, maxRunes int) string {
	return Truncate(strings.TrimSpace(htmlToMarkdown(s)), maxRunes)
}

func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

func htmlToMarkdown(s string) string {
	if s == "" || !containsHTML(s) {
		return s
	}
	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
