package conflict

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kalyan021004/todoboard/internal/config"
	"github.com/kalyan021004/todoboard/internal/domain/actor"
	"github.com/kalyan021004/todoboard/internal/domain/board"
	"github.com/kalyan021004/todoboard/internal/domain/conflict"
	"github.com/kalyan021004/todoboard/internal/domain/metadata"
	"github.com/kalyan021004/todoboard/internal/domain/task"
	"github.com/kalyan021004/todoboard/internal/infra/elasticsearch/common"
)

// All conflict Records live in a single index regardless of board; they are
// looked up by id and by pending status, never at board scale.
var IndexName = common.IndexName(".todoboard_conflicts")

type EsService struct {
	client   *elasticsearch.Client
	settings config.Conflicts
}

func NewService(client *elasticsearch.Client, settings config.Conflicts) conflict.Service {
	return &EsService{client: client, settings: settings}
}

func (e *EsService) Create(ctx context.Context, record *conflict.Record) (*conflict.Record, error) {
	toPersist := toPersistedConflict(record)
	toPersistBytes, err := json.Marshal(toPersist)
	if err != nil {
		return nil, common.JsonSerdesErr{Underlying: []error{err}}
	}

	createReq := esapi.CreateRequest{
		DocumentID: string(record.ID),
		Index:      string(IndexName),
		Body:       bytes.NewReader(toPersistBytes),
	}
	rawResp, err := createReq.Do(ctx, e.client)
	if err != nil {
		return nil, common.ElasticsearchErr{Underlying: err}
	}
	defer rawResp.Body.Close()
	statusCode := rawResp.StatusCode
	switch {
	case 200 <= statusCode && statusCode <= 299:
		var response common.EsCreateResponse
		if err := json.NewDecoder(rawResp.Body).Decode(&response); err != nil {
			return nil, common.JsonSerdesErr{Underlying: []error{err}}
		}
		persisted := *record
		persisted.StoreTerm = response.StoreTerm()
		return &persisted, nil
	default:
		return nil, common.UnexpectedEsStatusError(rawResp)
	}
}

func (e *EsService) Get(ctx context.Context, id conflict.Id) (*conflict.Record, error) {
	getReq := esapi.GetRequest{
		Index:      string(IndexName),
		DocumentID: string(id),
	}
	rawResp, err := getReq.Do(ctx, e.client)
	if err != nil {
		return nil, common.ElasticsearchErr{Underlying: err}
	}
	defer rawResp.Body.Close()

	switch rawResp.StatusCode {
	case 200:
		var response esHitPersistedConflict
		if err := json.NewDecoder(rawResp.Body).Decode(&response); err != nil {
			return nil, common.JsonSerdesErr{Underlying: []error{err}}
		}
		return response.toDomainRecord()
	case 404:
		return nil, conflict.NotFound{ID: id}
	default:
		return nil, common.UnexpectedEsStatusError(rawResp)
	}
}

func (e *EsService) ListPending(ctx context.Context, detectedBefore time.Time, limit uint) ([]conflict.Record, error) {
	queryBody := buildPendingQueryBody(detectedBefore, limit)
	queryBodyBytes, err := json.Marshal(queryBody)
	if err != nil {
		return nil, common.JsonSerdesErr{Underlying: []error{err}}
	}

	searchReq := esapi.SearchRequest{
		Index:             []string{string(IndexName)},
		IgnoreUnavailable: esapi.BoolPtr(true),
		AllowNoIndices:    esapi.BoolPtr(true),
		Body:              bytes.NewReader(queryBodyBytes),
	}
	rawResp, err := searchReq.Do(ctx, e.client)
	if err != nil {
		return nil, common.ElasticsearchErr{Underlying: err}
	}
	defer rawResp.Body.Close()

	switch rawResp.StatusCode {
	case 200:
		var searchResp esSearchResponse
		if err := json.NewDecoder(rawResp.Body).Decode(&searchResp); err != nil {
			return nil, common.JsonSerdesErr{Underlying: []error{err}}
		}
		records := make([]conflict.Record, 0, len(searchResp.Hits.Hits))
		for _, hit := range searchResp.Hits.Hits {
			record, err := hit.toDomainRecord()
			if err != nil {
				return nil, err
			}
			records = append(records, *record)
		}
		return records, nil
	case 404:
		return nil, nil
	default:
		return nil, common.UnexpectedEsStatusError(rawResp)
	}
}

func (e *EsService) Update(ctx context.Context, record *conflict.Record) (*conflict.Record, error) {
	updatePayload := toPersistedConflict(record)
	updatePayloadBytes, err := json.Marshal(updatePayload)
	if err != nil {
		return nil, common.JsonSerdesErr{Underlying: []error{err}}
	}
	// The pending->resolved transition is the only update a Record ever
	// sees; losing the conditional write here means someone else closed it
	// first.
	updateReq := esapi.IndexRequest{
		Index:         string(IndexName),
		DocumentID:    string(record.ID),
		Body:          bytes.NewReader(updatePayloadBytes),
		IfPrimaryTerm: esapi.IntPtr(int(record.StoreTerm.PrimaryTerm)),
		IfSeqNo:       esapi.IntPtr(int(record.StoreTerm.SeqNum)),
	}
	rawResp, err := updateReq.Do(ctx, e.client)
	if err != nil {
		return nil, common.ElasticsearchErr{Underlying: err}
	}
	defer rawResp.Body.Close()
	respStatus := rawResp.StatusCode
	switch {
	case 200 <= respStatus && respStatus <= 299:
		var resp common.EsUpdateResponse
		if err := json.NewDecoder(rawResp.Body).Decode(&resp); err != nil {
			return nil, common.JsonSerdesErr{Underlying: []error{err}}
		}
		persisted := *record
		persisted.StoreTerm = resp.StoreTerm()
		return &persisted, nil
	case respStatus == 409:
		return nil, conflict.AlreadyResolved{ID: record.ID}
	case respStatus == 404:
		return nil, conflict.NotFound{ID: record.ID}
	default:
		return nil, common.UnexpectedEsStatusError(rawResp)
	}
}

type jsonObjMap map[string]interface{}

func buildPendingQueryBody(detectedBefore time.Time, limit uint) jsonObjMap {
	return jsonObjMap{
		"from":                0,
		"size":                limit,
		"seq_no_primary_term": true,
		"sort": []jsonObjMap{
			{
				"detected_at": jsonObjMap{
					"order": "asc",
				},
			},
		},
		"query": jsonObjMap{
			"bool": jsonObjMap{
				"filter": jsonObjMap{
					"bool": jsonObjMap{
						"must": []jsonObjMap{
							{
								"term": jsonObjMap{
									"status": conflict.PENDING.String(),
								},
							},
							{
								"range": jsonObjMap{
									"detected_at": jsonObjMap{
										"lte": detectedBefore.Format(time.RFC3339Nano),
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

// Private persistence doc structures based entirely on basic types for ease of guaranteeing serdes.

type persistedActor struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type persistedFields struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Assignee    string  `json:"assignee,omitempty"`
	Position    float64 `json:"position"`
}

type persistedSnapshot struct {
	Data       persistedFields `json:"data"`
	Version    uint64          `json:"version"`
	ModifiedAt time.Time       `json:"modified_at"`
	ModifiedBy *persistedActor `json:"modified_by,omitempty"`
}

type persistedConflictData struct {
	Board            string            `json:"board"`
	TaskId           string            `json:"task_id"`
	Op               string            `json:"op"`
	Base             persistedSnapshot `json:"base"`
	Incoming         persistedSnapshot `json:"incoming"`
	Current          persistedSnapshot `json:"current"`
	Status           string            `json:"status"`
	DetectedAt       time.Time         `json:"detected_at"`
	ResolvedAt       *time.Time        `json:"resolved_at,omitempty"`
	ResolutionAction *string           `json:"resolution_action,omitempty"`
	ResolvedData     *persistedFields  `json:"resolved_data,omitempty"`
}

func toPersistedActor(a *actor.Actor) *persistedActor {
	if a == nil {
		return nil
	}
	return &persistedActor{Id: string(a.ID), Name: string(a.Name)}
}

func toDomainActor(a *persistedActor) *actor.Actor {
	if a == nil {
		return nil
	}
	return &actor.Actor{ID: actor.Id(a.Id), Name: actor.Name(a.Name)}
}

func toPersistedFields(f task.Fields) persistedFields {
	return persistedFields{
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status.String(),
		Priority:    f.Priority.String(),
		Assignee:    f.Assignee,
		Position:    float64(f.Position),
	}
}

func (p *persistedFields) toDomainFields() (task.Fields, error) {
	status, err := task.StatusFromString(p.Status)
	if err != nil {
		return task.Fields{}, task.InvalidPersistedData{PersistedData: *p}
	}
	priority, err := task.PriorityFromString(p.Priority)
	if err != nil {
		return task.Fields{}, task.InvalidPersistedData{PersistedData: *p}
	}
	return task.Fields{
		Title:       p.Title,
		Description: p.Description,
		Status:      status,
		Priority:    priority,
		Assignee:    p.Assignee,
		Position:    task.Position(p.Position),
	}, nil
}

func toPersistedSnapshot(s conflict.Snapshot) persistedSnapshot {
	return persistedSnapshot{
		Data:       toPersistedFields(s.Data),
		Version:    uint64(s.Version),
		ModifiedAt: s.ModifiedAt,
		ModifiedBy: toPersistedActor(s.ModifiedBy),
	}
}

func (p *persistedSnapshot) toDomainSnapshot() (conflict.Snapshot, error) {
	data, err := p.Data.toDomainFields()
	if err != nil {
		return conflict.Snapshot{}, err
	}
	return conflict.Snapshot{
		Data:       data,
		Version:    metadata.Version(p.Version),
		ModifiedAt: p.ModifiedAt,
		ModifiedBy: toDomainActor(p.ModifiedBy),
	}, nil
}

func toPersistedConflict(r *conflict.Record) persistedConflictData {
	var resolutionAction *string
	if r.ResolutionAction != nil {
		s := r.ResolutionAction.String()
		resolutionAction = &s
	}
	var resolvedData *persistedFields
	if r.ResolvedData != nil {
		f := toPersistedFields(*r.ResolvedData)
		resolvedData = &f
	}
	return persistedConflictData{
		Board:            string(r.Board),
		TaskId:           string(r.TaskId),
		Op:               r.Op.String(),
		Base:             toPersistedSnapshot(r.Base),
		Incoming:         toPersistedSnapshot(r.Incoming),
		Current:          toPersistedSnapshot(r.Current),
		Status:           r.Status.String(),
		DetectedAt:       r.DetectedAt,
		ResolvedAt:       r.ResolvedAt,
		ResolutionAction: resolutionAction,
		ResolvedData:     resolvedData,
	}
}

type esHitPersistedConflict struct {
	ID          string                `json:"_id"`
	Index       string                `json:"_index"`
	SeqNum      uint64                `json:"_seq_no"`
	PrimaryTerm uint64                `json:"_primary_term"`
	Source      persistedConflictData `json:"_source"`
}

func (resp *esHitPersistedConflict) toDomainRecord() (*conflict.Record, error) {
	p := resp.Source
	op, err := conflict.OpFromString(p.Op)
	if err != nil {
		return nil, task.InvalidPersistedData{PersistedData: p}
	}
	status, err := conflict.StatusFromString(p.Status)
	if err != nil {
		return nil, task.InvalidPersistedData{PersistedData: p}
	}
	base, err := p.Base.toDomainSnapshot()
	if err != nil {
		return nil, err
	}
	incoming, err := p.Incoming.toDomainSnapshot()
	if err != nil {
		return nil, err
	}
	current, err := p.Current.toDomainSnapshot()
	if err != nil {
		return nil, err
	}
	var resolutionAction *conflict.ResolutionAction
	if p.ResolutionAction != nil {
		action, err := conflict.ActionFromString(*p.ResolutionAction)
		if err != nil {
			return nil, task.InvalidPersistedData{PersistedData: p}
		}
		resolutionAction = &action
	}
	var resolvedData *task.Fields
	if p.ResolvedData != nil {
		fields, err := p.ResolvedData.toDomainFields()
		if err != nil {
			return nil, err
		}
		resolvedData = &fields
	}
	return &conflict.Record{
		ID:               conflict.Id(resp.ID),
		Board:            board.Name(p.Board),
		TaskId:           task.Id(p.TaskId),
		Op:               op,
		Base:             base,
		Incoming:         incoming,
		Current:          current,
		Status:           status,
		DetectedAt:       p.DetectedAt,
		ResolvedAt:       p.ResolvedAt,
		ResolutionAction: resolutionAction,
		ResolvedData:     resolvedData,
		StoreTerm: metadata.StoreTerm{
			SeqNum:      metadata.SeqNum(resp.SeqNum),
			PrimaryTerm: metadata.PrimaryTerm(resp.PrimaryTerm),
		},
	}, nil
}

type esSearchResponse struct {
	Hits struct {
		Hits []esHitPersistedConflict `json:"hits"`
	} `json:"hits"`
}
