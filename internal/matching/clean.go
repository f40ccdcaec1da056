package matching

import (
	"regexp"
	"strings"
)

var (
	tracklistingRe = regexp.MustCompile(`(?i)^([A-D][1-4]?\.\s?).*$`)
	labelRe        = regexp.MustCompile(`\[.*\]`)
	premiereRe     = regexp.MustCompile(`(?i)premiere:?\s`)
	parenthesesRe  = regexp.MustCompile(`\([^)]*\)`)

	fullWidthBrackets = strings.NewReplacer("【", "[", "】", "]")
)

// AllowedParentheticals are the keywords that keep a lone parenthetical group in a title.
var AllowedParentheticals = []string{"mix", "remix", "edit", "rework", "reshape", "dub", "version"}

// Clean runs every title cleaner in order and trims the result.
func Clean(s string) string {
	for _, fn := range []func(string) string{
		CleanTracklisting,
		CleanLabelOrCatalogNumber,
		CleanPremierePrefix,
		CleanParentheses,
	} {
		s = fn(s)
	}
	return strings.TrimSpace(s)
}

// CleanTracklisting removes a vinyl tracklisting marker such as "A1. " or "b. " from the start of s.
//
// Only leading markers are removed, so "A1. A1. Track" becomes "Track" and "A. LA. Nights" becomes "LA. Nights".
func CleanTracklisting(s string) string {
	for {
		m := tracklistingRe.FindStringSubmatch(s)
		if m == nil || m[1] == "" {
			return s
		}
		s = s[len(m[1]):]
	}
}

// CleanLabelOrCatalogNumber removes label names and catalog numbers such as "[TMZ12006]".
//
// Full-width brackets are normalized first. The match is greedy: with two bracketed groups everything from the first
// "[" to the last "]" is removed.
func CleanLabelOrCatalogNumber(s string) string {
	s = fullWidthBrackets.Replace(s)
	loc := labelRe.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}

// CleanPremierePrefix removes the first "premiere", optionally followed by a colon, and one whitespace character.
//
// Later occurrences stay unless they become the start of the title, so "Premiere Artist - Premiere Night" keeps its
// second "Premiere" while "Premiere: Premiere: Track" loses both.
func CleanPremierePrefix(s string) string {
	loc := premiereRe.FindStringIndex(s)
	for loc != nil {
		s = s[:loc[0]] + s[loc[1]:]
		loc = premiereRe.FindStringIndex(s)
		if loc != nil && strings.TrimSpace(s[:loc[0]]) != "" {
			break
		}
	}
	return s
}

// CleanParentheses drops parenthetical groups that are likely noise.
//
// With two or more groups the first is kept (usually the remix or version tag) and the rest are removed.
// A single group is removed unless it contains one of [AllowedParentheticals].
func CleanParentheses(s string) string {
	locs := parenthesesRe.FindAllStringIndex(s, -1)
	switch {
	case len(locs) == 0:
		return s
	case len(locs) == 1:
		group := strings.ToLower(s[locs[0][0]:locs[0][1]])
		for _, name := range AllowedParentheticals {
			if strings.Contains(group, name) {
				return s
			}
		}
		return strings.TrimSpace(s[:locs[0][0]] + s[locs[0][1]:])
	}

	var b strings.Builder
	b.WriteString(s[:locs[1][0]])
	for i := 1; i < len(locs); i++ {
		end := len(s)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		b.WriteString(s[locs[i][1]:end])
	}
	return strings.TrimSpace(b.String())
}
