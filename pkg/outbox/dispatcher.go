package outbox

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Meta describes where a dispatched message came from.
type Meta struct {
	Table    pgx.Identifier
	OrgID    string
	Topic    string
	EventID  uuid.UUID
	Sequence int64
	Attempts int
}

type DispatchedMessage struct {
	Meta    Meta
	Payload []byte
}

type Dispatcher interface {
	Dispatch(ctx context.Context, msg DispatchedMessage) error
}

type DispatcherFunc func(ctx context.Context, msg DispatchedMessage) error

func (f DispatcherFunc) Dispatch(ctx context.Context, msg DispatchedMessage) error {
	return f(ctx, msg)
}
