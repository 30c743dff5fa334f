package session

import (
	"context"
	"encoding/json"
)

// Data is the stored key/value payload of one browser session.
type Data map[string]json.RawMessage

type Repository interface {
	// Get returns the session payload, or an empty Data for an unknown
	// token; a fresh session needs no prior row.
	Get(ctx context.Context, token string) (Data, error)
	Save(ctx context.Context, token string, data Data) error
	Delete(ctx context.Context, token string) error
}
