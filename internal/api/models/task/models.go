// task holds the API Task models. The fields here translate close to one to
// one with the domain Task model, except that enums travel as strings and
// the version counter is surfaced as a plain integer.
package task

import (
	"github.com/kalyan021004/todoboard/internal/api/models/common"
	"github.com/kalyan021004/todoboard/internal/domain/actor"
	domainBoard "github.com/kalyan021004/todoboard/internal/domain/board"
	"github.com/kalyan021004/todoboard/internal/domain/task"
)

type Actor struct {
	ID   string `json:"id" binding:"required" example:"u-123"`
	Name string `json:"name" example:"Ada"`
}

func FromDomainActor(a *actor.Actor) *Actor {
	if a == nil {
		return nil
	}
	return &Actor{ID: string(a.ID), Name: string(a.Name)}
}

type NewTask struct {
	Title       string   `json:"title" binding:"required" example:"Write the launch notes"`
	Description string   `json:"description,omitempty"`
	Status      *string  `json:"status,omitempty" binding:"omitempty,taskStatus" example:"todo"`
	Priority    *string  `json:"priority,omitempty" binding:"omitempty,taskPriority" example:"normal"`
	Assignee    string   `json:"assignee,omitempty" example:"u-123"`
	Position    *float64 `json:"position,omitempty" example:"100"`
}

// Snapshot is the client's declaration of the copy it based its edit on.
// Optional on gated writes; when present it is stored verbatim in the
// conflict record's base snapshot on a mismatch.
type Snapshot struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status" binding:"omitempty,taskStatus"`
	Priority    string  `json:"priority" binding:"omitempty,taskPriority"`
	Assignee    string  `json:"assignee,omitempty"`
	Position    float64 `json:"position"`
}

// TaskUpdate is a gated partial update. Version is required; its absence is
// a client error, not a conflict.
type TaskUpdate struct {
	Version     *uint64   `json:"version" example:"3"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *string   `json:"status,omitempty" binding:"omitempty,taskStatus" example:"in-progress"`
	Priority    *string   `json:"priority,omitempty" binding:"omitempty,taskPriority" example:"high"`
	Assignee    *string   `json:"assignee,omitempty"`
	Base        *Snapshot `json:"base,omitempty"`
}

// TaskReposition is a gated move of a task to a new position.
type TaskReposition struct {
	Version  *uint64  `json:"version" example:"3"`
	Position *float64 `json:"position" binding:"required" example:"250"`
}

// TaskDelete carries the claimed version for a gated delete.
type TaskDelete struct {
	Version *uint64   `json:"version" example:"3"`
	Base    *Snapshot `json:"base,omitempty"`
}

type Task struct {
	ID          task.Id          `json:"id" swaggertype:"string" binding:"required"`
	Board       domainBoard.Name `json:"board" binding:"required,boardName" example:"team-roadmap"`
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description,omitempty"`
	Status      string           `json:"status" binding:"required" example:"todo"`
	Priority    string           `json:"priority" binding:"required" example:"normal"`
	Assignee    string           `json:"assignee,omitempty"`
	Position    float64          `json:"position"`
	ModifiedBy  *Actor           `json:"modifiedBy,omitempty"`
	Metadata    common.Metadata  `json:"metadata" binding:"required"`
}

// Converts an API model to the domain model
func (t *NewTask) ToDomainNewTask(boardName domainBoard.Name) (task.NewTask, error) {
	status := task.TODO
	if t.Status != nil {
		parsed, err := task.StatusFromString(*t.Status)
		if err != nil {
			return task.NewTask{}, err
		}
		status = parsed
	}
	priority := task.NORMAL
	if t.Priority != nil {
		parsed, err := task.PriorityFromString(*t.Priority)
		if err != nil {
			return task.NewTask{}, err
		}
		priority = parsed
	}
	var position task.Position
	if t.Position != nil {
		position = task.Position(*t.Position)
	}
	return task.NewTask{
		Board: boardName,
		Fields: task.Fields{
			Title:       t.Title,
			Description: t.Description,
			Status:      status,
			Priority:    priority,
			Assignee:    t.Assignee,
			Position:    position,
		},
	}, nil
}

// ToDomainChanges converts the update to a domain Changes, parsing the
// string enums.
func (t *TaskUpdate) ToDomainChanges() (task.Changes, error) {
	changes := task.Changes{
		Title:       t.Title,
		Description: t.Description,
		Assignee:    t.Assignee,
	}
	if t.Status != nil {
		parsed, err := task.StatusFromString(*t.Status)
		if err != nil {
			return task.Changes{}, err
		}
		changes.Status = &parsed
	}
	if t.Priority != nil {
		parsed, err := task.PriorityFromString(*t.Priority)
		if err != nil {
			return task.Changes{}, err
		}
		changes.Priority = &parsed
	}
	return changes, nil
}

// ToDomainFields converts a declared base snapshot, parsing the string
// enums; unparseable enums collapse to the zero value rather than failing
// the request, since the base is advisory data for conflict display.
func (s *Snapshot) ToDomainFields() task.Fields {
	status, _ := task.StatusFromString(s.Status)
	priority, _ := task.PriorityFromString(s.Priority)
	return task.Fields{
		Title:       s.Title,
		Description: s.Description,
		Status:      status,
		Priority:    priority,
		Assignee:    s.Assignee,
		Position:    task.Position(s.Position),
	}
}

func FromDomainFields(f *task.Fields) Snapshot {
	return Snapshot{
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status.String(),
		Priority:    f.Priority.String(),
		Assignee:    f.Assignee,
		Position:    float64(f.Position),
	}
}

// Creates an API model from the domain model
func FromDomainTask(dTask *task.Task) Task {
	return Task{
		ID:          dTask.ID,
		Board:       dTask.Board,
		Title:       dTask.Fields.Title,
		Description: dTask.Fields.Description,
		Status:      dTask.Fields.Status.String(),
		Priority:    dTask.Fields.Priority.String(),
		Assignee:    dTask.Fields.Assignee,
		Position:    float64(dTask.Fields.Position),
		ModifiedBy:  FromDomainActor(dTask.ModifiedBy),
		Metadata:    common.FromDomainMetadata(&dTask.Metadata),
	}
}
