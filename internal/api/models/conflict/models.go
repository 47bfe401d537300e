// conflict holds the API models for conflict detection and resolution: the
// structured 409 body a gated write comes back with, the full record
// resource used by the resolution prompt, and the resolution request.
package conflict

import (
	"fmt"
	"time"

	domainBoard "github.com/kalyan021004/todoboard/internal/domain/board"
	domainConflict "github.com/kalyan021004/todoboard/internal/domain/conflict"
	domainTask "github.com/kalyan021004/todoboard/internal/domain/task"

	"github.com/kalyan021004/todoboard/internal/api/models/task"
)

// TaskRef is the minimal task summary inside a conflict response.
type TaskRef struct {
	ID            domainTask.Id `json:"id" swaggertype:"string"`
	Title         string        `json:"title"`
	CurrentStatus string        `json:"currentStatus" example:"in-progress"`
}

// VersionInfo describes one side's version in a conflict response.
type VersionInfo struct {
	Version    uint64      `json:"version" example:"4"`
	ModifiedAt time.Time   `json:"modifiedAt" swaggertype:"string" format:"date-time"`
	ModifiedBy *task.Actor `json:"modifiedBy"`
}

// YoursInfo is the incoming writer's side; it carries no actor because the
// recipient is that actor.
type YoursInfo struct {
	Version    uint64    `json:"version" example:"3"`
	ModifiedAt time.Time `json:"modifiedAt" swaggertype:"string" format:"date-time"`
}

type Versions struct {
	Current VersionInfo `json:"current"`
	Yours   YoursInfo   `json:"yours"`
}

type Conflict struct {
	ID                 domainConflict.Id `json:"id" swaggertype:"string"`
	Task               TaskRef           `json:"task"`
	Versions           Versions          `json:"versions"`
	ResolutionEndpoint string            `json:"resolutionEndpoint" example:"/api/boards/team-roadmap/tasks/abc123/resolve-conflict"`
}

// Response is the body of the structured 409 a gated write receives when
// its claimed version is stale.
type Response struct {
	Success  bool     `json:"success" example:"false"`
	Code     string   `json:"code" example:"VERSION_CONFLICT"`
	Conflict Conflict `json:"conflict"`
}

func ResolutionEndpoint(boardName domainBoard.Name, taskId domainTask.Id) string {
	return fmt.Sprintf("/api/boards/%s/tasks/%s/resolve-conflict", string(boardName), string(taskId))
}

// FromDomainRecord builds the 409 response body for a freshly detected
// conflict.
func FromDomainRecord(record *domainConflict.Record) Response {
	return Response{
		Success: false,
		Code:    "VERSION_CONFLICT",
		Conflict: Conflict{
			ID: record.ID,
			Task: TaskRef{
				ID:            record.TaskId,
				Title:         record.Current.Data.Title,
				CurrentStatus: record.Current.Data.Status.String(),
			},
			Versions: Versions{
				Current: VersionInfo{
					Version:    uint64(record.Current.Version),
					ModifiedAt: record.Current.ModifiedAt,
					ModifiedBy: task.FromDomainActor(record.Current.ModifiedBy),
				},
				Yours: YoursInfo{
					Version:    uint64(record.Incoming.Version),
					ModifiedAt: record.Incoming.ModifiedAt,
				},
			},
			ResolutionEndpoint: ResolutionEndpoint(record.Board, record.TaskId),
		},
	}
}

// Snapshot is one side of a conflict as shown to a resolving user.
type Snapshot struct {
	Data       task.Snapshot `json:"data"`
	Version    uint64        `json:"version"`
	ModifiedAt time.Time     `json:"modifiedAt" swaggertype:"string" format:"date-time"`
	ModifiedBy *task.Actor   `json:"modifiedBy,omitempty"`
}

// FieldDiff is one row of the field-by-field comparison a resolution
// prompt renders.
type FieldDiff struct {
	Field    string      `json:"field" example:"title"`
	Changed  bool        `json:"changed"`
	Current  interface{} `json:"current"`
	Incoming interface{} `json:"incoming"`
}

// Record is the full conflict resource.
type Record struct {
	ID               domainConflict.Id `json:"id" swaggertype:"string"`
	Board            domainBoard.Name  `json:"board" swaggertype:"string"`
	TaskId           domainTask.Id     `json:"taskId" swaggertype:"string"`
	Op               string            `json:"op" example:"update"`
	Status           string            `json:"status" example:"pending"`
	DetectedAt       time.Time         `json:"detectedAt" swaggertype:"string" format:"date-time"`
	ResolvedAt       *time.Time        `json:"resolvedAt,omitempty" swaggertype:"string" format:"date-time"`
	ResolutionAction *string           `json:"resolutionAction,omitempty" example:"merge"`
	Base             Snapshot          `json:"base"`
	Incoming         Snapshot          `json:"incoming"`
	Current          Snapshot          `json:"current"`
	Diffs            []FieldDiff       `json:"diffs"`
	ResolvedData     *task.Snapshot    `json:"resolvedData,omitempty"`
}

func fromDomainSnapshot(s *domainConflict.Snapshot) Snapshot {
	return Snapshot{
		Data:       task.FromDomainFields(&s.Data),
		Version:    uint64(s.Version),
		ModifiedAt: s.ModifiedAt,
		ModifiedBy: task.FromDomainActor(s.ModifiedBy),
	}
}

// FullFromDomainRecord builds the full conflict resource, diffs included.
func FullFromDomainRecord(record *domainConflict.Record) Record {
	domainDiffs := record.FieldDiffs()
	diffs := make([]FieldDiff, 0, len(domainDiffs))
	for _, d := range domainDiffs {
		diffs = append(diffs, FieldDiff{
			Field:    string(d.Field),
			Changed:  d.Changed,
			Current:  stringify(d.Current),
			Incoming: stringify(d.Incoming),
		})
	}
	var resolutionAction *string
	if record.ResolutionAction != nil {
		s := record.ResolutionAction.String()
		resolutionAction = &s
	}
	var resolvedData *task.Snapshot
	if record.ResolvedData != nil {
		s := task.FromDomainFields(record.ResolvedData)
		resolvedData = &s
	}
	return Record{
		ID:               record.ID,
		Board:            record.Board,
		TaskId:           record.TaskId,
		Op:               record.Op.String(),
		Status:           record.Status.String(),
		DetectedAt:       record.DetectedAt,
		ResolvedAt:       record.ResolvedAt,
		ResolutionAction: resolutionAction,
		Base:             fromDomainSnapshot(&record.Base),
		Incoming:         fromDomainSnapshot(&record.Incoming),
		Current:          fromDomainSnapshot(&record.Current),
		Diffs:            diffs,
		ResolvedData:     resolvedData,
	}
}

// stringify renders enum values as their wire strings so diff rows are
// stable JSON scalars.
func stringify(v interface{}) interface{} {
	switch typed := v.(type) {
	case domainTask.Status:
		return typed.String()
	case domainTask.Priority:
		return typed.String()
	default:
		return v
	}
}

// ResolutionRequest is a human decision about a pending conflict.
//
// For merge, exactly one of FieldSelections or MergedData should be given;
// MergedData wins when both are.
type ResolutionRequest struct {
	ConflictId      domainConflict.Id `json:"conflictId" binding:"required" swaggertype:"string"`
	Action          string            `json:"action" binding:"required,resolutionAction" example:"merge"`
	FieldSelections map[string]string `json:"fieldSelections,omitempty" swaggertype:"object,string"`
	MergedData      *task.Snapshot    `json:"mergedData,omitempty"`
}

// ToDomainResolution parses the request into a domain Resolution.
func (r *ResolutionRequest) ToDomainResolution() (domainConflict.Resolution, error) {
	action, err := domainConflict.ActionFromString(r.Action)
	if err != nil {
		return domainConflict.Resolution{}, err
	}
	var selections map[domainTask.FieldName]domainConflict.FieldChoice
	if len(r.FieldSelections) > 0 {
		selections = make(map[domainTask.FieldName]domainConflict.FieldChoice, len(r.FieldSelections))
		for field, choice := range r.FieldSelections {
			parsedChoice, err := parseFieldChoice(choice)
			if err != nil {
				return domainConflict.Resolution{}, err
			}
			name, err := parseFieldName(field)
			if err != nil {
				return domainConflict.Resolution{}, err
			}
			selections[name] = parsedChoice
		}
	}
	var mergedData *domainTask.Fields
	if r.MergedData != nil {
		fields := r.MergedData.ToDomainFields()
		mergedData = &fields
	}
	return domainConflict.Resolution{
		Action:          action,
		FieldSelections: selections,
		MergedData:      mergedData,
	}, nil
}

func parseFieldChoice(s string) (domainConflict.FieldChoice, error) {
	switch s {
	case "mine":
		return domainConflict.MINE, nil
	case "theirs":
		return domainConflict.THEIRS, nil
	default:
		return domainConflict.MINE, fmt.Errorf("invalid field choice: [%s]", s)
	}
}

func parseFieldName(s string) (domainTask.FieldName, error) {
	for _, name := range domainTask.MergeableFields {
		if string(name) == s {
			return name, nil
		}
	}
	return "", fmt.Errorf("field is not mergeable: [%s]", s)
}

// ResolutionResponse is returned from a successful resolution.
type ResolutionResponse struct {
	Success  bool       `json:"success" example:"true"`
	Conflict Record     `json:"conflict"`
	Task     *task.Task `json:"task,omitempty"`
}
