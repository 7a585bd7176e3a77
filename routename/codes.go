package routename

import (
	"regexp"
	"strings"
)

// AdministrativePrefix is dropped from route codes issued by the regional
// transport authority
const AdministrativePrefix = "ELY"

var (
	nonAlnum       = regexp.MustCompile(`[^a-zA-Z0-9]`)
	trailingLetter = regexp.MustCompile(`[a-zA-Z]+$`)
	leadingLetter  = regexp.MustCompile(`^[a-zA-Z]+`)
)

// CleanCode strips everything but ASCII letters and digits from a route
// number token, then the administrative prefix
func CleanCode(s string) string {
	cleaned := nonAlnum.ReplaceAllString(s, "")
	cleaned = strings.ReplaceAll(cleaned, "/", "")
	return strings.TrimPrefix(cleaned, AdministrativePrefix)
}

// Code is a route code split into a numeric core and letter affixes
type Code struct {
	Core   string
	Prefix string
	Suffix string
}

// SplitAffixes peels the trailing letters and then the leading letters off
// a cleaned code: "T12B" -> {Core: "12", Prefix: "T", Suffix: "B"}
func SplitAffixes(code string) Code {
	var c Code
	if loc := trailingLetter.FindStringIndex(code); loc != nil {
		c.Suffix = code[loc[0]:]
		code = code[:loc[0]]
	}
	if loc := leadingLetter.FindStringIndex(code); loc != nil {
		c.Prefix = code[:loc[1]]
		code = code[loc[1]:]
	}
	c.Core = code
	return c
}

// String recombines the code, keeping only the first letter of each affix
func (c Code) String() string {
	var b strings.Builder
	if c.Prefix != "" {
		b.WriteString(c.Prefix[:1])
	}
	b.WriteString(c.Core)
	if c.Suffix != "" {
		b.WriteString(c.Suffix[:1])
	}
	return b.String()
}
