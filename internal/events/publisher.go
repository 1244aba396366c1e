// Package events delivers audit events to downstream consumers.
package events

import (
	"context"

	"github.com/quorumvault/custodian/internal/types"
)

// Publisher delivers an audit event. Emitting components treat delivery as
// best-effort: a failing publisher never rolls back the state change that
// produced the event.
type Publisher interface {
	Publish(ctx context.Context, event types.Event) error
}

// Discard is a Publisher that drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, types.Event) error { return nil }
