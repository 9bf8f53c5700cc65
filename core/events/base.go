package events

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

type Event interface {
	Kind() Kind
	Timestamp() time.Time
	PipelineID() uuid.UUID
}

type Base struct {
	kind       Kind
	timestamp  time.Time
	pipelineID uuid.UUID
}

func NewBase(kind Kind, pipelineID uuid.UUID) Base {
	return Base{kind: kind, timestamp: time.Now(), pipelineID: pipelineID}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}

func (b Base) PipelineID() uuid.UUID {
	return b.pipelineID
}
