package prescriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCandidates(t *testing.T) {
	text := `Dr. Sharma, MBBS
1. Paracetamol 500mg once daily
2) Amoxicillin 250 mg capsule 3 times daily
- Cetirizine twice daily
Ibuprofen
Rx

Vitamin B12 1000mcg after meals`

	got := ExtractCandidates(text)
	require.Len(t, got, 5)

	assert.Equal(t, Candidate{Name: "Paracetamol", Dosage: "500mg", Frequency: "once daily", QuantityRequired: 1}, got[0])
	assert.Equal(t, Candidate{Name: "Amoxicillin", Dosage: "250mg", Frequency: "3 times daily", QuantityRequired: 21}, got[1])
	assert.Equal(t, Candidate{Name: "Cetirizine", Frequency: "twice daily", QuantityRequired: 1}, got[2])
	assert.Equal(t, Candidate{Name: "Ibuprofen", QuantityRequired: 1}, got[3])
	assert.Equal(t, Candidate{Name: "Vitamin B12", Dosage: "1000mcg", Frequency: "after meals", QuantityRequired: 1}, got[4])
}

func TestExtractCandidatesFindsTrailingFrequency(t *testing.T) {
	got := ExtractCandidates("Metformin 500mg tablet with water 2 times a day")
	require.Len(t, got, 1)
	assert.Equal(t, "Metformin", got[0].Name)
	assert.Equal(t, "2 times a day", got[0].Frequency)
	assert.Equal(t, 14, got[0].QuantityRequired)
}

func TestEstimateQuantity(t *testing.T) {
	cases := map[string]int{
		"":              1,
		"once daily":    1,
		"2 times daily": 14,
		"3x per day":    21,
		"0 times daily": 1,
	}
	for freq, want := range cases {
		assert.Equal(t, want, EstimateQuantity(freq), freq)
	}
}

func TestSignificantWords(t *testing.T) {
	assert.Equal(t, []string{"calcium", "carbonate"}, SignificantWords("Calcium Carbonate 500mg tablet"))
	assert.Equal(t, []string{"vitamin"}, SignificantWords("Vitamin D3 1000IU"))
	assert.Equal(t, []string{"insulin"}, SignificantWords("Insulin 10 units before meals"))
	assert.Empty(t, SignificantWords("tablet once daily"))
}
