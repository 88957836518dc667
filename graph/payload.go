package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      EntityType.Domain,
		Category:    EntityType.Category,
		Version:     EntityType.Version,
		Description: "Cross-reference entity: one subject and its triples from one ingest flush",
		Factory:     func() any { return &EntityPayload{} },
	})
	if err != nil {
		panic("register xref entity payload: " + err.Error())
	}
}

// EntityType is the message type of published entities.
var EntityType = message.Type{Domain: "xref", Category: "entity", Version: "v1"}

var (
	errNoEntityID     = errors.New("entity id is required")
	errNoTriples      = errors.New("entity has no triples")
	errForeignSubject = errors.New("triple subject differs from entity")
)

// EntityPayload carries every triple of one subject from one flush.
// ID is the graph entity id of CURIE; Source names the producing ingest.
type EntityPayload struct {
	ID         string           `json:"id"`
	CURIE      string           `json:"curie"`
	Source     string           `json:"source"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func newEntityPayload(id, curie, source string, at time.Time) *EntityPayload {
	return &EntityPayload{ID: id, CURIE: curie, Source: source, UpdatedAt: at}
}

func (e *EntityPayload) EntityID() string          { return e.ID }
func (e *EntityPayload) Triples() []message.Triple { return e.TripleData }
func (e *EntityPayload) Schema() message.Type      { return EntityType }

// Validate checks the id and that every triple is about this entity.
func (e *EntityPayload) Validate() error {
	if e.ID == "" {
		return errNoEntityID
	}
	if len(e.TripleData) == 0 {
		return fmt.Errorf("%s: %w", e.ID, errNoTriples)
	}
	for _, t := range e.TripleData {
		if t.Subject != e.ID {
			return fmt.Errorf("%s: %w: %s", e.ID, errForeignSubject, t.Subject)
		}
	}
	return nil
}

func (e *EntityPayload) MarshalJSON() ([]byte, error) {
	type wire EntityPayload
	return json.Marshal((*wire)(e))
}

func (e *EntityPayload) UnmarshalJSON(data []byte) error {
	type wire EntityPayload
	return json.Unmarshal(data, (*wire)(e))
}
