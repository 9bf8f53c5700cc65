package llms

import "context"

// Generator turns a fully built prompt into a single reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
