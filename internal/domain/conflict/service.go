package conflict

import (
	"context"
	"fmt"
	"time"
)

// A Service that takes care of the persistence of conflict Records.
//
// Records get exactly one mutation in their life (pending -> resolved), and
// that mutation is a conditional write on the Record's StoreTerm, so two
// concurrent resolvers can never both close the same Record.
type Service interface {
	// Persists the given freshly detected Record.
	Create(ctx context.Context, record *Record) (*Record, error)

	// Retrieves a Record by Id, returns an error if no such Record exists.
	Get(ctx context.Context, id Id) (*Record, error)

	// ListPending returns up to limit pending Records detected before the
	// given cutoff, oldest first. Used by the expiry sweep.
	ListPending(ctx context.Context, detectedBefore time.Time, limit uint) ([]Record, error)

	// Update conditionally persists the given (already resolved) Record,
	// conditional on its StoreTerm as read. A lost swap means somebody else
	// already closed it and surfaces as AlreadyResolved.
	Update(ctx context.Context, record *Record) (*Record, error)
}

// <-- Domain Errors

// ServiceErr is an error interface for Service
type ServiceErr interface {
	error
	Id() Id
}

// NotFound is returned when the service cannot find a Record by a given Id
type NotFound struct {
	ID Id
}

func (e NotFound) Error() string {
	return fmt.Sprintf("Could not find conflict [%v]", e.ID)
}

func (e NotFound) Id() Id {
	return e.ID
}

// AlreadyResolved guards the single pending -> resolved transition: it is
// returned both when a Record is already resolved at read time and when the
// conditional close loses to a concurrent resolver.
type AlreadyResolved struct {
	ID Id
}

func (e AlreadyResolved) Error() string {
	return fmt.Sprintf("Conflict [%v] has already been resolved", e.ID)
}

func (e AlreadyResolved) Id() Id {
	return e.ID
}

//     Errors -->
