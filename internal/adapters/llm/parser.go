package llm

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/fermi-notifier/internal/domain"
)

// ParseEstimation splits raw model output into problem and solution.
//
// The text must contain exactly one SeparatorMarker; the part before it
// must start with ProblemMarker and the part after it with SolutionMarker.
// Markers and surrounding whitespace are removed from the result.
func ParseEstimation(raw string) (domain.Estimation, error) {
	parts := strings.Split(raw, SeparatorMarker)
	if len(parts) != 2 {
		return domain.Estimation{}, &domain.ParseError{
			Reason: fmt.Sprintf("expected 2 parts, found %d", len(parts)),
		}
	}

	problemPart := strings.TrimSpace(parts[0])
	solutionPart := strings.TrimSpace(parts[1])

	if !strings.HasPrefix(problemPart, ProblemMarker) || !strings.HasPrefix(solutionPart, SolutionMarker) {
		return domain.Estimation{}, &domain.ParseError{Reason: "missing expected marker(s)"}
	}

	problem := strings.TrimSpace(strings.TrimPrefix(problemPart, ProblemMarker))
	solution := strings.TrimSpace(strings.TrimPrefix(solutionPart, SolutionMarker))

	if problem == "" || solution == "" {
		return domain.Estimation{}, &domain.ParseError{Reason: "parsed problem or solution empty"}
	}

	return domain.Estimation{Problem: problem, Solution: solution}, nil
}
