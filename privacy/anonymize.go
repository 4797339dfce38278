package privacy

import "regexp"

// AnonymizationLevel names a bundle of redaction rules. Each level enables a
// superset of the previous one's rules.
type AnonymizationLevel string

const (
	AnonymizationLow    AnonymizationLevel = "low"
	AnonymizationMedium AnonymizationLevel = "medium"
	AnonymizationHigh   AnonymizationLevel = "high"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)

	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`),
		regexp.MustCompile(`\b[A-Z]\. [A-Z][a-z]+\b`),
	}

	largeNumberPattern = regexp.MustCompile(`\b\d{4,}\b`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b[A-Za-z]+ \d{1,2}, \d{4}\b`),
	}

	addressPattern = regexp.MustCompile(`\b\d+ [A-Za-z ]+ (Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd)\b`)
)

// AnonymizeText redacts identifying fragments from text. This is data
// minimization, not a metered privacy mechanism: it is deterministic and
// consumes no budget.
//
// Rules by level:
//
//	low:    emails, phone numbers
//	medium: low + name-like bigrams, multi-digit numbers
//	high:   medium + dates, street addresses
//
// Unknown levels fall back to medium.
func AnonymizeText(text string, level AnonymizationLevel) string {
	out := emailPattern.ReplaceAllString(text, "[EMAIL]")
	out = phonePattern.ReplaceAllString(out, "[PHONE]")

	if level == AnonymizationLow {
		return out
	}

	// Dates must be redacted before name-like bigrams and large numbers eat
	// their components.
	if level == AnonymizationHigh {
		out = addressPattern.ReplaceAllString(out, "[LOCATION]")
		for _, pattern := range datePatterns {
			out = pattern.ReplaceAllString(out, "[DATE]")
		}
	}

	for _, pattern := range namePatterns {
		out = pattern.ReplaceAllString(out, "[NAME]")
	}
	out = largeNumberPattern.ReplaceAllString(out, "[LARGE_NUMBER]")

	return out
}
