package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-analyzer/internal/analysis"
)

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "in range", in: 0.75, want: 0.75},
		{name: "zero", in: 0, want: 0},
		{name: "one", in: 1, want: 1},
		{name: "percentage style", in: 85, want: 1},
		{name: "just above one", in: 1.01, want: 1},
		{name: "negative", in: -0.2, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampConfidence(tt.in))
		})
	}
}

func TestDecodeModelJSON(t *testing.T) {
	var payload struct {
		Make       string  `json:"make"`
		Confidence float64 `json:"confidence"`
	}

	t.Run("plain JSON", func(t *testing.T) {
		err := decodeModelJSON(`{"make": "Toyota", "confidence": 0.9}`, &payload)
		require.NoError(t, err)
		assert.Equal(t, "Toyota", payload.Make)
	})

	t.Run("fenced JSON", func(t *testing.T) {
		err := decodeModelJSON("```json\n{\"make\": \"Honda\", \"confidence\": 0.8}\n```", &payload)
		require.NoError(t, err)
		assert.Equal(t, "Honda", payload.Make)
	})

	t.Run("not JSON", func(t *testing.T) {
		err := decodeModelJSON("I cannot identify this vehicle.", &payload)
		assert.Error(t, err)
	})
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		label string
		want  analysis.Severity
	}{
		{label: "none", want: analysis.SeverityNone},
		{label: "Moderate", want: analysis.SeverityModerate},
		{label: "medium", want: analysis.SeverityModerate},
		{label: "SEVERE", want: analysis.SeveritySevere},
		{label: "heavy", want: analysis.SeveritySevere},
		{label: "minor", want: analysis.SeverityMinor},
		{label: "catastrophic", want: analysis.SeverityMinor},
		{label: "", want: analysis.SeverityMinor},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSeverity(tt.label))
		})
	}
}
