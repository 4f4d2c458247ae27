package identity

import (
	"strings"
	"unicode"

	"github.com/humatwin/BCR/internal/models"
)

// SplitConcatenated tries to split a doubles team name that arrived as
// one concatenated string, e.g. "Daniel LeungTimothy Lock". It inserts
// a boundary at each lowercase-to-uppercase transition, then bisects
// the tokens at their midpoint into two assumed person names.
//
// This is a best-effort heuristic, not a guarantee: hyphenated and
// particle names ("van", "de") can bisect wrongly. Callers must treat
// the result as a guess.
func SplitConcatenated(raw string) (left, right string, ok bool) {
	name := strings.TrimSpace(raw)
	if name == "" || strings.Contains(name, "/") {
		return "", "", false
	}

	var b strings.Builder
	b.Grow(len(name) + 4)
	prev := rune(0)
	for _, r := range name {
		if unicode.IsLower(prev) && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}

	tokens := strings.Fields(b.String())
	if len(tokens) < 2 {
		return "", "", false
	}
	mid := len(tokens) / 2
	if mid < 1 {
		mid = 1
	}
	return strings.Join(tokens[:mid], " "), strings.Join(tokens[mid:], " "), true
}

// CategoryFromText guesses the category from a free-form event label
// such as "Men's Singles" or "Women's Doubles".
func CategoryFromText(text string) (models.Category, bool) {
	t := strings.ToLower(text)
	men := strings.Contains(t, "men") && !strings.Contains(t, "women")
	women := strings.Contains(t, "women") || strings.Contains(t, "ladies")
	switch {
	case strings.Contains(t, "mixed"):
		return models.MixedDoubles, true
	case men && strings.Contains(t, "single"):
		return models.MensSingles, true
	case women && strings.Contains(t, "single"):
		return models.WomensSingles, true
	case men && strings.Contains(t, "double"):
		return models.MensDoubles, true
	case women && strings.Contains(t, "double"):
		return models.WomensDoubles, true
	}
	return "", false
}

// drawTokens lists the substrings a draw name may carry per singles
// category, across the English and French labels the sources use.
var drawTokens = map[models.Category][]string{
	models.MensSingles:   {"MS", "MEN", "HOMME"},
	models.WomensSingles: {"WS", "WOMEN", "FEMME"},
}

// DrawMatchesCategory reports whether a draw name belongs to the given
// singles category.
func DrawMatchesCategory(drawName string, c models.Category) bool {
	tokens, ok := drawTokens[c]
	if !ok {
		return false
	}
	upper := strings.ToUpper(drawName)
	for _, tok := range tokens {
		if strings.Contains(upper, tok) {
			return true
		}
	}
	return false
}

// eventCodes maps the short event codes printed on match lists ("MSA",
// "SMB", ...) to singles categories.
var eventCodes = map[string]models.Category{
	"MS": models.MensSingles, "MSA": models.MensSingles, "MSB": models.MensSingles, "MSC": models.MensSingles,
	"SM": models.MensSingles, "SMA": models.MensSingles, "SMB": models.MensSingles, "SMC": models.MensSingles,
	"WS": models.WomensSingles, "WSA": models.WomensSingles, "WSB": models.WomensSingles, "WSC": models.WomensSingles,
	"SF": models.WomensSingles, "SFA": models.WomensSingles, "SFB": models.WomensSingles, "SFC": models.WomensSingles,
}

// CategoryFromEvent maps a match-list event code to a singles category,
// falling back to the free-form label heuristics.
func CategoryFromEvent(event string) (models.Category, bool) {
	code := strings.ToUpper(strings.TrimSpace(event))
	if c, ok := eventCodes[code]; ok {
		return c, true
	}
	return CategoryFromText(event)
}
