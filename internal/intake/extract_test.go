package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain name", "John Doe", "John Doe", true},
		{"surrounding whitespace trimmed", "  Asha Patel  ", "Asha Patel", true},
		{"too short", "Jo", "", false},
		{"only digits", "12345", "", false},
		{"greeting filler", "hello there", "", false},
		{"booking filler", "I want to book a token", "", false},
		{"filler is case insensitive", "HELLO", "", false},
		{"filler inside a word still rejects", "Sophia", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractName(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractAge(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{"bare number", "25", 25, true},
		{"with unit", "25 years old", 25, true},
		{"yrs", "30 yrs", 30, true},
		{"i am prefix", "i am 42", 42, true},
		{"contraction prefix", "I'm 19", 19, true},
		{"upper bound", "150", 150, true},
		{"out of range", "200", 0, false},
		{"no number", "not a number", 0, false},
		{"four digits", "1234", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAge(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"contiguous digits", "9876543210", "9876543210", true},
		{"embedded in sentence", "my number is 9876543210 thanks", "9876543210", true},
		{"hyphen grouping cleaned", "987-654-3210", "9876543210", true},
		{"dot grouping cleaned", "987.654.3210", "9876543210", true},
		{"space grouping cleaned", "987 654 3210", "9876543210", true},
		{"too short", "12345", "", false},
		{"no digits", "call me maybe", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPhone(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractDetails(t *testing.T) {
	got, ok := ExtractDetails("  fever and headache since Tuesday  ")
	assert.True(t, ok)
	assert.Equal(t, "fever and headache since Tuesday", got)

	_, ok = ExtractDetails("ache")
	assert.False(t, ok)

	_, ok = ExtractDetails("12345")
	assert.False(t, ok)
}
