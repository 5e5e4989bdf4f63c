package prompt

import (
	"regexp"
	"strings"
)

// HomeOrganization is the fixed first-party entity from whose perspective
// every analysis is framed. Getting the self/other distinction wrong inverts
// the meaning of every downstream strength/weakness label, so the framing
// branch in the news prompt depends on this identity check and nothing else.
const HomeOrganization = "KT DS"

// homeAliases are the spellings under which the home organization appears in
// Korean news text. Matching is over normalized forms, so spacing and case
// variants collapse together.
var homeAliases = []string{
	"KT DS",
	"kt ds",
	"케이티디에스",
	"KTDS",
	"케이티 DS",
	"케이티 디에스",
}

var nameCharsRegex = regexp.MustCompile(`[^0-9A-Za-z가-힣]`)

// normalizeName case-folds a company name and strips everything that is not
// a digit, an ASCII letter or a Hangul syllable.
func normalizeName(name string) string {
	return strings.ToLower(nameCharsRegex.ReplaceAllString(name, ""))
}

// IsHomeOrganization reports whether the analysis subject is the home
// organization itself. An empty subject means "no specific company", which
// defaults to the home organization's own perspective.
func IsHomeOrganization(company string) bool {
	n := normalizeName(company)
	if n == "" {
		return true
	}
	for _, alias := range homeAliases {
		if normalizeName(alias) == n {
			return true
		}
	}
	return false
}
