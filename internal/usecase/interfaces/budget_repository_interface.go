package interfaces

import (
	"context"

	"presupuesto_xpto/internal/domain/entities"
)

// IBudgetRepository abstracts DynamoDB persistence for Budget.
//
// Writes are conditional on the stored version: Update and Delete fail with
// entities.ErrStaleSnapshot when the record moved past expectedVersion.
// GetByID returns a zero Budget when the id does not exist.
type IBudgetRepository interface {
	Create(ctx context.Context, b entities.Budget) (entities.Budget, error)
	GetByID(ctx context.Context, id string) (entities.Budget, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entities.Budget, error)
	Update(ctx context.Context, b entities.Budget, expectedVersion int64) (entities.Budget, error)
	Delete(ctx context.Context, id string, expectedVersion int64) error
}
