package task

import (
	"context"
	"fmt"

	"github.com/kalyan021004/todoboard/internal/domain/board"
)

// A Service that takes care of the persistence of Tasks.
//
// The conditional writes (Update, Delete) are the only way anything in the
// system mutates a persisted Task: they compare-and-swap on the StoreTerm
// that was read along with the Task, and fail with InvalidVersion if the
// stored document moved in the meantime. This is what makes the version
// check and the write a single atomic operation instead of a racy
// read-then-write pair.
type Service interface {
	// Persists the given NewTask. The stored Task starts at Version 1.
	Create(ctx context.Context, newTask *NewTask) (*Task, error)

	// Retrieves a Task by Id, returns an error if:
	// - No such task exists
	Get(ctx context.Context, board board.Name, taskId Id) (*Task, error)

	// List returns the Tasks on a board, ordered by position.
	List(ctx context.Context, board board.Name) ([]Task, error)

	// Update conditionally persists the given (already mutated) Task.
	//
	// The write is conditional on the Task's StoreTerm as read; on success
	// the returned Task carries the next Version (exactly +1) and the new
	// StoreTerm. If the stored document was modified since the read,
	// returns InvalidVersion and stores nothing.
	Update(ctx context.Context, task *Task) (*Task, error)

	// Delete conditionally removes the given Task, conditional on its
	// StoreTerm exactly like Update.
	Delete(ctx context.Context, task *Task) error

	// Refresh makes preceding writes on the given board visible to List.
	Refresh(ctx context.Context, board board.Name) error
}

// <-- Domain Errors

// ServiceErr is an error interface for Service
type ServiceErr interface {
	error
	Id() Id
}

// NotFound is returned when the service cannot find
// a Task by a given Id
type NotFound struct {
	ID        Id
	BoardName board.Name
}

func (e NotFound) Error() string {
	return fmt.Sprintf("Could not find [%v] on board [%v]", e.ID, e.BoardName)
}

func (e NotFound) Id() Id {
	return e.ID
}

// InvalidVersion is returned when a conditional write loses: the stored
// document's term no longer matches the one the write was conditioned on.
type InvalidVersion struct {
	ID Id
}

func (e InvalidVersion) Error() string {
	return fmt.Sprintf("Version provided did not match persisted version for [%v]", e.ID)
}

func (e InvalidVersion) Id() Id {
	return e.ID
}

// AlreadyExists is returned when the service tries to create
// a Task, but there already exists one with the same ID
type AlreadyExists struct {
	ID Id
}

func (e AlreadyExists) Error() string {
	return fmt.Sprintf("Task with Id [%v] already exists ", e.ID)
}

func (e AlreadyExists) Id() Id {
	return e.ID
}

// Invalid data
type InvalidPersistedData struct {
	PersistedData interface{}
}

func (e InvalidPersistedData) Error() string {
	return fmt.Sprintf("Invalid persisted data [%v]", e.PersistedData)
}

//     Errors -->

