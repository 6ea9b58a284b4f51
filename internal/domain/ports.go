package domain

import "context"

// ProblemGenerator defines how the core application obtains a new estimation.
type ProblemGenerator interface {
	Generate(ctx context.Context) (Estimation, error)
}

// Notifier defines how the core application pushes a message to the user.
// An empty delay means immediate delivery.
type Notifier interface {
	Notify(ctx context.Context, titlePrefix, body, delay string) error
}
