package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeTextLow(t *testing.T) {
	in := "Contact jane.doe@example.com or 555-123-4567 about the incident."
	out := AnonymizeText(in, AnonymizationLow)

	assert.Contains(t, out, "[EMAIL]")
	assert.Contains(t, out, "[PHONE]")
	assert.NotContains(t, out, "jane.doe@example.com")
	assert.NotContains(t, out, "555-123-4567")
}

func TestAnonymizeTextMedium(t *testing.T) {
	in := "Alice Johnson approved invoice 48213 yesterday."
	out := AnonymizeText(in, AnonymizationMedium)

	assert.Contains(t, out, "[NAME]")
	assert.Contains(t, out, "[LARGE_NUMBER]")
	assert.NotContains(t, out, "Alice Johnson")
	assert.NotContains(t, out, "48213")
}

func TestAnonymizeTextHigh(t *testing.T) {
	in := "Meet at 12 Baker Street on 2024-03-05, said J. Smith."
	out := AnonymizeText(in, AnonymizationHigh)

	assert.Contains(t, out, "[LOCATION]")
	assert.Contains(t, out, "[DATE]")
	assert.Contains(t, out, "[NAME]")
}

func TestAnonymizeTextLowKeepsNames(t *testing.T) {
	in := "Alice Johnson wrote this."
	out := AnonymizeText(in, AnonymizationLow)
	assert.Equal(t, in, out)
}

func TestAnonymizeTextUnknownLevelDefaultsToMedium(t *testing.T) {
	in := "Bob Martin paid 99999."
	out := AnonymizeText(in, AnonymizationLevel("extreme"))

	assert.Contains(t, out, "[NAME]")
	assert.Contains(t, out, "[LARGE_NUMBER]")
}

func TestAnonymizeTextDeterministic(t *testing.T) {
	in := "Ping carol@ops.io, 555.987.6543, Dana White, 2023-01-01."
	assert.Equal(t,
		AnonymizeText(in, AnonymizationHigh),
		AnonymizeText(in, AnonymizationHigh),
	)
}
