package events

import "github.com/google/uuid"

const (
	KindGenerationSucceeded Kind = "generation.succeeded"
	KindGenerationFailed    Kind = "generation.failed"
)

// GenerationSucceeded carries the assistant reply.
type GenerationSucceeded struct {
	Base
	response string
}

func NewGenerationSucceeded(pipelineID uuid.UUID, response string) GenerationSucceeded {
	return GenerationSucceeded{Base: NewBase(KindGenerationSucceeded, pipelineID), response: response}
}

func (e GenerationSucceeded) Response() string { return e.response }

type GenerationFailed struct {
	Base
	err error
}

func NewGenerationFailed(pipelineID uuid.UUID, err error) GenerationFailed {
	return GenerationFailed{Base: NewBase(KindGenerationFailed, pipelineID), err: err}
}

func (e GenerationFailed) Err() error { return e.err }
