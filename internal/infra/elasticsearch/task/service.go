package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kalyan021004/todoboard/internal/config"
	"github.com/kalyan021004/todoboard/internal/domain/actor"
	"github.com/kalyan021004/todoboard/internal/domain/board"
	"github.com/kalyan021004/todoboard/internal/domain/metadata"
	"github.com/kalyan021004/todoboard/internal/domain/task"
	"github.com/kalyan021004/todoboard/internal/infra/elasticsearch/common"
)

var BoardIndexPrefix = ".todoboard_board-"

type EsService struct {
	client   *elasticsearch.Client
	settings config.TasksDefaults
	getUTC   func() time.Time // for mocking
}

// For testing
func (e *EsService) SetUTCGetter(getter func() time.Time) {
	e.getUTC = getter
}

func NewService(client *elasticsearch.Client, settings config.TasksDefaults) task.Service {
	return &EsService{client: client, settings: settings, getUTC: func() time.Time {
		return time.Now().UTC()
	}}
}

func (e *EsService) Create(ctx context.Context, newTask *task.NewTask) (*task.Task, error) {
	indexName := BuildIndexName(newTask.Board)
	now := e.getUTC()
	toPersist := persistedTaskData{
		Title:       newTask.Fields.Title,
		Description: newTask.Fields.Description,
		Status:      newTask.Fields.Status,
		Priority:    newTask.Fields.Priority,
		Assignee:    newTask.Fields.Assignee,
		Position:    float64(newTask.Fields.Position),
		ModifiedBy:  toPersistedActor(newTask.By),
		Metadata: common.PersistedMetadata{
			CreatedAt:  now,
			ModifiedAt: now,
			Version:    1,
		},
	}

	toPersistBytes, err := json.Marshal(toPersist)
	if err != nil {
		return nil, common.JsonSerdesErr{Underlying: []error{err}}
	}

	taskId := task.GenerateId()
	createReq := esapi.CreateRequest{
		DocumentID: string(taskId),
		Index:      string(indexName),
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
		domainTask := toPersist.toDomainTask(taskId, newTask.Board, response.StoreTerm())
		return &domainTask, nil
	case statusCode == 409:
		return nil, task.AlreadyExists{ID: taskId}
	default:
		return nil, common.UnexpectedEsStatusError(rawResp)
	}
}

func (e *EsService) Get(ctx context.Context, boardName board.Name, taskId task.Id) (*task.Task, error) {
	getReq := esapi.GetRequest{
		Index:      string(BuildIndexName(boardName)),
		DocumentID: string(taskId),
	}
	rawResp, err := getReq.Do(ctx, e.client)
	if err != nil {
		return nil, common.ElasticsearchErr{Underlying: err}
	}
	defer rawResp.Body.Close()

	switch rawResp.StatusCode {
	case 200:
		var response esHitPersistedTask
		if err := json.NewDecoder(rawResp.Body).Decode(&response); err != nil {
			return nil, common.JsonSerdesErr{Underlying: []error{err}}
		}
		retrieved := response.toDomainTask()
		return &retrieved, nil
	case 404:
		return nil, task.NotFound{ID: taskId, BoardName: boardName}
	default:
		return nil, common.UnexpectedEsStatusError(rawResp)
	}
}

func (e *EsService) List(ctx context.Context, boardName board.Name) ([]task.Task, error) {
	queryBody := buildListQueryBody(e.settings.ListSize)
	queryBodyBytes, err := json.Marshal(queryBody)
	if err != nil {
		return nil, common.JsonSerdesErr{Underlying: []error{err}}
	}

	searchReq := esapi.SearchRequest{
		Index:             []string{string(BuildIndexName(boardName))},
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
		tasks := make([]task.Task, 0, len(searchResp.Hits.Hits))
		for _, hit := range searchResp.Hits.Hits {
			tasks = append(tasks, hit.toDomainTask())
		}
		return tasks, nil
	case 404:
		// board index not created yet; an empty board, not an error
		return nil, nil
	default:
		return nil, common.UnexpectedEsStatusError(rawResp)
	}
}

func (e *EsService) Update(ctx context.Context, toUpdate *task.Task) (*task.Task, error) {
	updated := *toUpdate
	// the version advances by exactly one on every successful write; the
	// store owns this counter, callers never bump it themselves
	updated.Metadata.Version = toUpdate.Metadata.Version + 1

	updatePayload := toPersistedTask(&updated)
	updatePayloadBytes, err := json.Marshal(updatePayload)
	if err != nil {
		return nil, common.JsonSerdesErr{Underlying: []error{err}}
	}
	// Purposely using the Index API (rather than the update API) so as to
	// not get bit by old stale data due to partial updates. We send optimistic
	// locking data to ensure we are _updating_
	updateReq := esapi.IndexRequest{
		Index:         string(BuildIndexName(toUpdate.Board)),
		DocumentID:    string(toUpdate.ID),
		Body:          bytes.NewReader(updatePayloadBytes),
		IfPrimaryTerm: esapi.IntPtr(int(toUpdate.Metadata.StoreTerm.PrimaryTerm)),
		IfSeqNo:       esapi.IntPtr(int(toUpdate.Metadata.StoreTerm.SeqNum)),
	}
	rawResp, err := updateReq.Do(ctx, e.client)
	if err != nil {
		return nil, common.ElasticsearchErr{Underlying: err}
	}
	defer rawResp.Body.Close()
	respStatus := rawResp.StatusCode
	switch {
	case 200 <= respStatus && respStatus <= 299:
		// Updated, grab the new concurrency anchor
		var resp common.EsUpdateResponse
		if err := json.NewDecoder(rawResp.Body).Decode(&resp); err != nil {
			return nil, common.JsonSerdesErr{Underlying: []error{err}}
		}
		updated.Metadata.StoreTerm = resp.StoreTerm()
		return &updated, nil
	case respStatus == 409:
		return nil, task.InvalidVersion{ID: toUpdate.ID}
	case respStatus == 404:
		return nil, task.NotFound{
			ID:        toUpdate.ID,
			BoardName: toUpdate.Board,
		}
	default:
		return nil, common.UnexpectedEsStatusError(rawResp)
	}
}

func (e *EsService) Delete(ctx context.Context, toDelete *task.Task) error {
	deleteReq := esapi.DeleteRequest{
		Index:         string(BuildIndexName(toDelete.Board)),
		DocumentID:    string(toDelete.ID),
		IfPrimaryTerm: esapi.IntPtr(int(toDelete.Metadata.StoreTerm.PrimaryTerm)),
		IfSeqNo:       esapi.IntPtr(int(toDelete.Metadata.StoreTerm.SeqNum)),
	}
	rawResp, err := deleteReq.Do(ctx, e.client)
	if err != nil {
		return common.ElasticsearchErr{Underlying: err}
	}
	defer rawResp.Body.Close()
	respStatus := rawResp.StatusCode
	switch {
	case 200 <= respStatus && respStatus <= 299:
		return nil
	case respStatus == 409:
		return task.InvalidVersion{ID: toDelete.ID}
	case respStatus == 404:
		return task.NotFound{
			ID:        toDelete.ID,
			BoardName: toDelete.Board,
		}
	default:
		return common.UnexpectedEsStatusError(rawResp)
	}
}

func (e *EsService) Refresh(ctx context.Context, boardName board.Name) error {
	refreshReq := esapi.IndicesRefreshRequest{
		Index:             []string{string(BuildIndexName(boardName))},
		IgnoreUnavailable: esapi.BoolPtr(true),
		AllowNoIndices:    esapi.BoolPtr(true),
	}
	rawResp, err := refreshReq.Do(ctx, e.client)
	if err != nil {
		return common.ElasticsearchErr{Underlying: err}
	}
	defer rawResp.Body.Close()
	if rawResp.IsError() {
		return common.UnexpectedEsStatusError(rawResp)
	}
	return nil
}

type jsonObjMap map[string]interface{}

func BuildIndexName(boardName board.Name) common.IndexName {
	return common.IndexName(fmt.Sprintf("%s%s", BoardIndexPrefix, string(boardName)))
}

var AllBoardsPattern = BuildIndexName("*")

func boardNameFromIndexName(indexName common.IndexName) board.Name {
	return board.Name(strings.TrimPrefix(string(indexName), BoardIndexPrefix))
}

func buildListQueryBody(limit uint) jsonObjMap {
	return jsonObjMap{
		"from":                0,
		"size":                limit,
		"seq_no_primary_term": true,
		"sort": []jsonObjMap{
			{
				"position": jsonObjMap{
					"order": "asc",
				},
			},
		},
		"query": jsonObjMap{
			"match_all": jsonObjMap{},
		},
	}
}

// Private persistence doc structures based entirely on basic types for ease of guaranteeing serdes.

type persistedActor struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type persistedTaskData struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	Status      task.Status              `json:"status"`
	Priority    task.Priority            `json:"priority"`
	Assignee    string                   `json:"assignee,omitempty"`
	Position    float64                  `json:"position"`
	ModifiedBy  *persistedActor          `json:"modified_by,omitempty"`
	Metadata    common.PersistedMetadata `json:"metadata"`
}

func (pTask *persistedTaskData) toDomainTask(taskId task.Id, boardName board.Name, storeTerm metadata.StoreTerm) task.Task {
	var modifiedBy *actor.Actor
	if pTask.ModifiedBy != nil {
		modifiedBy = &actor.Actor{
			ID:   actor.Id(pTask.ModifiedBy.Id),
			Name: actor.Name(pTask.ModifiedBy.Name),
		}
	}
	return task.Task{
		ID:    taskId,
		Board: boardName,
		Fields: task.Fields{
			Title:       pTask.Title,
			Description: pTask.Description,
			Status:      pTask.Status,
			Priority:    pTask.Priority,
			Assignee:    pTask.Assignee,
			Position:    task.Position(pTask.Position),
		},
		ModifiedBy: modifiedBy,
		Metadata: metadata.Metadata{
			CreatedAt:  metadata.CreatedAt(pTask.Metadata.CreatedAt),
			ModifiedAt: metadata.ModifiedAt(pTask.Metadata.ModifiedAt),
			Version:    metadata.Version(pTask.Metadata.Version),
			StoreTerm:  storeTerm,
		},
	}
}

func toPersistedActor(a *actor.Actor) *persistedActor {
	if a == nil {
		return nil
	}
	return &persistedActor{
		Id:   string(a.ID),
		Name: string(a.Name),
	}
}

func toPersistedTask(t *task.Task) persistedTaskData {
	return persistedTaskData{
		Title:       t.Fields.Title,
		Description: t.Fields.Description,
		Status:      t.Fields.Status,
		Priority:    t.Fields.Priority,
		Assignee:    t.Fields.Assignee,
		Position:    float64(t.Fields.Position),
		ModifiedBy:  toPersistedActor(t.ModifiedBy),
		Metadata: common.PersistedMetadata{
			CreatedAt:  time.Time(t.Metadata.CreatedAt),
			ModifiedAt: time.Time(t.Metadata.ModifiedAt),
			Version:    uint64(t.Metadata.Version),
		},
	}
}

type esHitPersistedTask struct {
	ID          string            `json:"_id"`
	Index       string            `json:"_index"`
	SeqNum      uint64            `json:"_seq_no"`
	PrimaryTerm uint64            `json:"_primary_term"`
	Source      persistedTaskData `json:"_source"`
}

func (resp *esHitPersistedTask) toDomainTask() task.Task {
	pTask := resp.Source
	return pTask.toDomainTask(task.Id(resp.ID), boardNameFromIndexName(common.IndexName(resp.Index)), metadata.StoreTerm{
		SeqNum:      metadata.SeqNum(resp.SeqNum),
		PrimaryTerm: metadata.PrimaryTerm(resp.PrimaryTerm),
	})
}

type esSearchResponse struct {
	Hits struct {
		Hits []esHitPersistedTask `json:"hits"`
	} `json:"hits"`
}
