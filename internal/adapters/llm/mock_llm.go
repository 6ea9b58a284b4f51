package llm

import (
	"context"

	"github.com/PabloGalante/fermi-notifier/internal/domain"
)

const mockOutput = ProblemMarker + " How many golf balls fit in a school bus?\n" +
	SeparatorMarker + "\n" +
	SolutionMarker + " A bus is roughly 2.5m x 2.5m x 10m, about 60 m³ of space. " +
	"Subtract ~10% for seats. A golf ball is ~40 cm³, so 54,000,000 / 40 with ~64% packing " +
	"gives about 860,000. Answer: ~500,000 to 1,000,000."

// MockGenerator returns canned text for local development. The text still
// goes through ParseEstimation so the contract stays exercised.
type MockGenerator struct {
	Output string
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{Output: mockOutput}
}

func (m *MockGenerator) Generate(_ context.Context) (domain.Estimation, error) {
	return ParseEstimation(m.Output)
}
