package repository

import (
	"context"

	"github.com/erd-studio/engine/internal/diagram"
)

// Gateway is the project store. Get returns a CodeNotFound error for an
// absent id; Put inserts or overwrites the whole record; Delete of an absent
// id is not an error.
//
// UpdateIfNewer overwrites an existing record in one atomic step unless the
// stored updatedAt is later than p's. It reports whether p was written and
// returns CodeNotFound when the record is absent, so a deleted project is
// never recreated.
type Gateway interface {
	GetAll(ctx context.Context) ([]*diagram.Project, error)
	Get(ctx context.Context, id string) (*diagram.Project, error)
	Put(ctx context.Context, p *diagram.Project) error
	UpdateIfNewer(ctx context.Context, p *diagram.Project) (bool, error)
	Delete(ctx context.Context, id string) error
}

// Checker is implemented by gateways backed by a remote service.
type Checker interface {
	Check(ctx context.Context) error
}
