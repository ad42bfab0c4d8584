package outbox

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Message is the unit stored in <module>_outbox.
type Message struct {
	OrgID   string
	Topic   string
	EventID uuid.UUID
	Payload json.RawMessage
}

// ParseTable turns "schema.table" into a pgx identifier.
func ParseTable(name string) pgx.Identifier {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return pgx.Identifier(strings.Split(name, "."))
}

func TableLabel(table pgx.Identifier) string {
	if len(table) == 0 {
		return ""
	}
	return strings.Join(table, ".")
}
