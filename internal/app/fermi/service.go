package fermi

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/fermi-notifier/internal/domain"
	"github.com/PabloGalante/fermi-notifier/internal/observability"
)

// SolutionDelay is how long the notification service holds the solution back.
const SolutionDelay = "10m"

const (
	problemTitlePrefix  = "Problem: "
	solutionTitlePrefix = "Solution: "
)

// Service runs generate -> send problem -> schedule solution, once per call.
// It keeps no state between runs and is safe for concurrent use.
type Service struct {
	generator domain.ProblemGenerator
	notifier  domain.Notifier
}

func NewService(generator domain.ProblemGenerator, notifier domain.Notifier) *Service {
	return &Service{
		generator: generator,
		notifier:  notifier,
	}
}

type RunOutput struct {
	Estimation    domain.Estimation
	SolutionDelay string
}

// Run executes the three steps in order and stops at the first failure.
// Nothing is retried or rolled back: when the last step fails the problem
// has already been delivered.
func (s *Service) Run(ctx context.Context) (*RunOutput, error) {
	log := observability.LoggerFromContext(ctx)
	log.Info("fermi run started")

	var est domain.Estimation
	err := step(ctx, "generate", func() error {
		var err error
		est, err = s.generator.Generate(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("generating problem: %w", err)
	}

	err = step(ctx, "send_problem", func() error {
		return s.notifier.Notify(ctx, problemTitlePrefix, est.Problem, "")
	})
	if err != nil {
		return nil, fmt.Errorf("sending problem notification: %w", err)
	}

	err = step(ctx, "schedule_solution", func() error {
		return s.notifier.Notify(ctx, solutionTitlePrefix, est.Solution, SolutionDelay)
	})
	if err != nil {
		log.Error("problem delivered but solution not scheduled", "partial", true, "error", err)
		return nil, fmt.Errorf("scheduling solution notification: %w", err)
	}

	log.Info("fermi run completed", "solution_delay", SolutionDelay)
	return &RunOutput{
		Estimation:    est,
		SolutionDelay: SolutionDelay,
	}, nil
}

func step(ctx context.Context, name string, fn func() error) error {
	log := observability.LoggerFromContext(ctx)
	start := time.Now()
	log.Info("step start", "step", name)

	if err := fn(); err != nil {
		log.Error("step failed", "step", name, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return err
	}

	log.Info("step end", "step", name, "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
