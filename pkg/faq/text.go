package faq

import (
	"strings"
	"unicode"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

// Tokens lowercases text, drops English stop words and single-character
// words, and Porter-stems what remains.
func Tokens(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) < 2 || stopWords[w] {
			continue
		}
		stem := porterstemmer.StemString(w)
		if len([]rune(stem)) < 2 {
			continue
		}
		out = append(out, stem)
	}
	return out
}

// CleanText trims text and collapses internal whitespace runs.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

var stopWords = toSet(`a about above after again against all also am an and any are as at
be because been before being below between both but by can cannot could
did do does doing done down during each either else ever every few for from
further get gets got had has have having he her here hers herself him himself
his how however i if in into is it its itself just let may me might mine more
most much must my myself neither no nor not now of off often on once only or
other otherwise our ours ourselves out over own per perhaps please put quite
rather really said same say see seem seemed seems several shall she should
since so some still such than that the their theirs them themselves then there
these they this those though through thus to too toward towards under until up
upon us very via was we well were what whatever when whence whenever where
whereas whether which while who whoever whole whom whose why will with within
without would yet you your yours yourself yourselves`)

func toSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}
