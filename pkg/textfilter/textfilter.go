// Package textfilter cleans user supplied text before it is stored.
package textfilter

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

var blockBreaks = strings.NewReplacer("</p>", " ", "<br>", " ", "<br/>", " ", "<br />", " ", "</div>", " ")

// Sanitize strips all markup, unescapes entities and collapses whitespace.
func Sanitize(s string) string {
	s = blockBreaks.Replace(s)
	s = strict.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

var profanity = map[string]struct{}{
	"asshole":      {},
	"bastard":      {},
	"bitch":        {},
	"bullshit":     {},
	"cunt":         {},
	"damn":         {},
	"dick":         {},
	"fuck":         {},
	"fucker":       {},
	"fucking":      {},
	"motherfucker": {},
	"piss":         {},
	"prick":        {},
	"shit":         {},
	"slut":         {},
	"whore":        {},
}

// ContainsProfanity reports whether any word of s is on the blocked list.
// Matching is case insensitive and on whole words only.
func ContainsProfanity(s string) bool {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if _, ok := profanity[w]; ok {
			return true
		}
	}
	return false
}
