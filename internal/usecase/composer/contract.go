package composer

import "context"

// Generator phrases a grounded answer from evidence. It is never invoked for
// blocked intents and its prompt always carries the policy guard clause.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds the confidence thresholds.
type Config struct {
	// StrictThreshold is the similarity bar for high confidence.
	StrictThreshold float64
}
