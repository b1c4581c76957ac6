package intake

import (
	"regexp"
	"strconv"
	"strings"
)

// Extraction is intentionally permissive and order-sensitive: each field
// has an ordered list of patterns and the first match wins. Ambiguous input
// is disambiguated by which collection step the conversation is on, never
// by inspecting the content.

// nameStoplist holds conversational fillers that disqualify an utterance
// from being taken as a name.
var nameStoplist = []string{"hello", "hi", "help", "book", "appointment", "token", "visit", "hour"}

var digitsOnlyRe = regexp.MustCompile(`^\d+$`)

var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{1,3})\b`),
	regexp.MustCompile(`(\d{1,3})\s*(?:years?|yrs?|old)`),
	regexp.MustCompile(`(?:age|i am|i'm)\s*(\d{1,3})`),
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{10,15})\b`),
	regexp.MustCompile(`(\d{3}[-.\s]?\d{3}[-.\s]?\d{4})`),
	regexp.MustCompile(`(\+\d{1,3}[-.\s]?\d{10,15})`),
}

var phoneSeparatorRe = regexp.MustCompile(`[-.\s]`)

// ExtractName accepts the trimmed input verbatim unless it is too short,
// purely numeric, or contains a conversational filler.
func ExtractName(text string) (string, bool) {
	clean := strings.TrimSpace(text)
	if len(clean) <= 2 {
		return "", false
	}
	if digitsOnlyRe.MatchString(clean) {
		return "", false
	}
	lower := strings.ToLower(clean)
	for _, word := range nameStoplist {
		if strings.Contains(lower, word) {
			return "", false
		}
	}
	return clean, true
}

// ExtractAge tries each age pattern in order against the lower-cased input
// and returns the first match that parses to an age in [0,150].
func ExtractAge(text string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, re := range agePatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		age, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if age >= 0 && age <= 150 {
			return age, true
		}
	}
	return 0, false
}

// ExtractPhone tries each phone pattern in order, strips separators from
// the first match, and accepts the result if at least 10 digits remain.
func ExtractPhone(text string) (string, bool) {
	for _, re := range phonePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		phone := phoneSeparatorRe.ReplaceAllString(m[1], "")
		if len(phone) >= 10 {
			return phone, true
		}
	}
	return "", false
}

// ExtractDetails accepts any trimmed input longer than 5 characters.
func ExtractDetails(text string) (string, bool) {
	clean := strings.TrimSpace(text)
	if len(clean) > 5 {
		return clean, true
	}
	return "", false
}
