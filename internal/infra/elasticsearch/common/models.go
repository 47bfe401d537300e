// common holds the pieces shared by every Elasticsearch-backed service:
// client construction, response envelopes and error wrappers.
package common

import (
	"bytes"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kalyan021004/todoboard/internal/domain/metadata"
)

type IndexName string
type DocumentID string

// ElasticsearchErr wraps transport and unexpected-status failures talking
// to the cluster.
type ElasticsearchErr struct {
	Underlying error
}

func (e ElasticsearchErr) Error() string {
	return fmt.Sprintf("Error from Elasticsearch: %v", e.Underlying)
}

func (e ElasticsearchErr) Unwrap() error {
	return e.Underlying
}

// JsonSerdesErr wraps failures to marshal a document for the store or to
// decode what came back from it.
type JsonSerdesErr struct {
	Underlying []error
}

func (e JsonSerdesErr) Error() string {
	return fmt.Sprintf("Error working with JSON: %v", e.Underlying)
}

func (e JsonSerdesErr) Unwrap() error {
	if len(e.Underlying) == 1 {
		return e.Underlying[0]
	}
	return fmt.Errorf("Multiple JSON serdes errors: [%v]", e.Underlying)
}

// UnexpectedEsStatusError captures a status code no caller was prepared
// for, together with whatever body came with it.
func UnexpectedEsStatusError(rawResp *esapi.Response) ElasticsearchErr {
	var buf bytes.Buffer
	var body string
	if _, err := buf.ReadFrom(rawResp.Body); err == nil {
		body = buf.String()
	}
	return ElasticsearchErr{Underlying: fmt.Errorf("Unexpected status from ES: [%d], body: [%s]", rawResp.StatusCode, body)}
}

// EsCreateResponse is the envelope of a successful document create.
type EsCreateResponse struct {
	ID          string `json:"_id"`
	SeqNum      uint64 `json:"_seq_no"`
	PrimaryTerm uint64 `json:"_primary_term"`
}

func (r *EsCreateResponse) StoreTerm() metadata.StoreTerm {
	return metadata.StoreTerm{
		SeqNum:      metadata.SeqNum(r.SeqNum),
		PrimaryTerm: metadata.PrimaryTerm(r.PrimaryTerm),
	}
}

// EsUpdateResponse is the envelope of a successful index or delete call.
type EsUpdateResponse struct {
	Index       string `json:"_index"`
	ID          string `json:"_id"`
	SeqNum      uint64 `json:"_seq_no"`
	PrimaryTerm uint64 `json:"_primary_term"`
	Result      string `json:"result"`
}

func (r *EsUpdateResponse) StoreTerm() metadata.StoreTerm {
	return metadata.StoreTerm{
		SeqNum:      metadata.SeqNum(r.SeqNum),
		PrimaryTerm: metadata.PrimaryTerm(r.PrimaryTerm),
	}
}

// PersistedMetadata is the _source form of a document's metadata; the
// store-level seq-no and primary-term live outside _source and travel
// separately.
type PersistedMetadata struct {
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	Version    uint64    `json:"version"`
}
