package prescriptions

import (
	"regexp"
	"strconv"
	"strings"
)

// Candidate is one medicine line pulled out of OCR text.
type Candidate struct {
	Name             string
	Dosage           string
	Frequency        string
	QuantityRequired int
}

const minNameLength = 3

// weekSupplyDays multiplies the per-day count found in the frequency text.
// A phrase without digits ("once daily") yields a quantity of 1, not 7.
const weekSupplyDays = 7

const (
	nameExpr   = `(?P<name>[a-z][a-z0-9'\-]*(?:\s+[a-z][a-z0-9'\-]*)*?)`
	dosageExpr = `(?P<dosage>\d+(?:\.\d+)?\s?(?:mcg|mg|ml|g|iu))`
	formExpr   = `(?:tablets?|capsules?|syrup|injection|cream|drops)`
	freqExpr   = `(?P<freq>\d+\s*(?:times|x)\s*(?:daily|per day|a day)|(?:once|twice|thrice)\s+(?:daily|a day|per day)|(?:before|after)\s+(?:meals|food))`
)

// linePatterns are tried in order; the first one that matches a line wins.
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^` + nameExpr + `\s+` + dosageExpr + `\b(?:\s+` + formExpr + `)?(?:\s+` + freqExpr + `)?(?:\s.*)?$`),
	regexp.MustCompile(`(?i)^` + nameExpr + `\s+` + freqExpr + `(?:\s.*)?$`),
	regexp.MustCompile(`(?i)^` + nameExpr + `$`),
}

var (
	freqSearch   = regexp.MustCompile(`(?i)` + freqExpr)
	firstInteger = regexp.MustCompile(`\d+`)
	leadingList  = regexp.MustCompile(`^(?:\d+[.)]|[-*•])\s*`)
)

// ExtractCandidates parses free OCR text line by line. Lines no pattern
// recognizes are skipped, as are names shorter than three characters.
func ExtractCandidates(text string) []Candidate {
	var out []Candidate
	for _, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}
		for _, re := range linePatterns {
			match := re.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			c := Candidate{
				Name:      strings.TrimSpace(group(re, match, "name")),
				Dosage:    strings.ReplaceAll(group(re, match, "dosage"), " ", ""),
				Frequency: strings.ToLower(group(re, match, "freq")),
			}
			if c.Frequency == "" {
				if rest := strings.TrimPrefix(line, c.Name); rest != line {
					c.Frequency = strings.ToLower(freqSearch.FindString(rest))
				}
			}
			c.Frequency = strings.Join(strings.Fields(c.Frequency), " ")
			c.QuantityRequired = EstimateQuantity(c.Frequency)
			if len(c.Name) >= minNameLength {
				out = append(out, c)
			}
			break
		}
	}
	return out
}

// EstimateQuantity assumes a one week supply: the first integer in the
// frequency text times seven, or 1 when the text has no digits.
func EstimateQuantity(frequency string) int {
	digits := firstInteger.FindString(frequency)
	if digits == "" {
		return 1
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 1
	}
	return n * weekSupplyDays
}

func cleanLine(raw string) string {
	line := strings.TrimSpace(raw)
	line = leadingList.ReplaceAllString(line, "")
	line = strings.TrimRight(line, ".,;:")
	return strings.Join(strings.Fields(line), " ")
}

func group(re *regexp.Regexp, match []string, name string) string {
	idx := re.SubexpIndex(name)
	if idx < 0 || idx >= len(match) {
		return ""
	}
	return match[idx]
}
