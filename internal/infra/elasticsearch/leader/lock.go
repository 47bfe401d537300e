package leader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kalyan021004/todoboard/internal/domain/leader"
	"github.com/kalyan021004/todoboard/internal/domain/metadata"
	"github.com/kalyan021004/todoboard/internal/domain/tracing"
	"github.com/kalyan021004/todoboard/internal/infra/elasticsearch/common"
)

var IndexName = common.IndexName(".todoboard_leader_locks")

type holderId string

type state uint32

func (s state) String() string {
	return statesToString[s]
}

const (
	FOLLOWER state = iota
	CLAIMANT
	USURPER
	LEADER
	STOPPED
)

var statesToString = map[state]string{
	FOLLOWER: "FOLLOWER",
	CLAIMANT: "CLAIMANT",
	USURPER:  "USURPER",
	LEADER:   "LEADER",
	STOPPED:  "STOPPED",
}

// EsLock elects a single leader among the server processes sharing one lock
// document.
//
// Each holder polls the document. The current leader refreshes its heartbeat
// with a conditional write on every pass; a follower that observes a
// heartbeat older than the lag tolerance tries to take the document over with
// the same conditional write, and whoever wins the swap is the new leader.
// Correctness rests on the document-level seq-no/primary-term guard, so at
// most one holder's write lands per term; liveness rests on the holders'
// clocks not drifting further apart than the lag tolerance.
type EsLock struct {
	lockDocId common.DocumentID
	holderId  holderId

	client *elasticsearch.Client
	tracer tracing.Tracer
	getUTC func() time.Time // for mocking

	pollInterval time.Duration
	lagTolerance time.Duration

	// Current state, accessed atomically; transitions happen only inside
	// the loop, guarded by mu.
	state state
	mu    sync.Mutex

	// The last version of the lock document this holder saw, nil when the
	// document is unknown or stale knowledge was discarded.
	lastSeen *lockDoc
}

// Ignore: this is for tests
func (e *EsLock) SetUTCGetter(getter func() time.Time) {
	e.getUTC = getter
}

func buildHolderId(id common.DocumentID) holderId {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	return holderId(fmt.Sprintf("%s-%s", string(id), suffix))
}

// NewLeaderLock returns a new leader.Lock with a randomly generated holder
// id.
func NewLeaderLock(lockDocId common.DocumentID, client *elasticsearch.Client, pollInterval time.Duration, lagTolerance time.Duration, tracer tracing.Tracer) leader.Lock {
	return &EsLock{
		lockDocId:    lockDocId,
		holderId:     buildHolderId(lockDocId),
		client:       client,
		tracer:       tracer,
		getUTC: func() time.Time {
			return time.Now().UTC()
		},
		pollInterval: pollInterval,
		lagTolerance: lagTolerance,
		state:        FOLLOWER,
	}
}

func (e *EsLock) IsLeader() bool {
	return e.getState() == LEADER
}

func (e *EsLock) getState() state {
	return state(atomic.LoadUint32((*uint32)(&e.state)))
}

func (e *EsLock) setState(next state) {
	if prev := state(atomic.SwapUint32((*uint32)(&e.state), uint32(next))); prev != next {
		log.Info().
			Str("old_state", prev.String()).
			Str("new_state", next.String()).
			Str("holder_id", string(e.holderId)).
			Msg("Leader lock state change")
	}
}

func (e *EsLock) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setState(FOLLOWER)
	go e.loop()
}

func (e *EsLock) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setState(STOPPED)
}

func (e *EsLock) loop() {
	for {
		e.mu.Lock()
		started := e.getUTC()
		if e.getState() == STOPPED {
			e.mu.Unlock()
			return
		}
		rerunImmediately := e.step()
		e.mu.Unlock()

		if !rerunImmediately {
			wait := e.pollInterval - e.getUTC().Sub(started)
			if wait > 0 {
				time.Sleep(wait)
			}
		}
	}
}

// step runs one state transition. It returns true when the next pass should
// run without waiting out the poll interval (state changes that are one
// half of a two-step takeover).
func (e *EsLock) step() bool {
	switch e.getState() {
	case LEADER:
		return e.renew()
	case CLAIMANT:
		return e.claim()
	case USURPER:
		return e.usurp()
	default:
		return e.observe()
	}
}

// observe reads the lock document and decides whether this holder should
// stand pat, claim a missing document, or take over a stale one.
func (e *EsLock) observe() bool {
	doc, err := e.readLockDoc()
	if err != nil {
		if _, missing := err.(NotFound); missing {
			e.lastSeen = nil
			e.setState(CLAIMANT)
			return true
		}
		log.Error().Err(err).Msg("Leader lock read failed, staying a follower")
		e.lastSeen = nil
		e.setState(FOLLOWER)
		return false
	}

	lag := e.getUTC().Sub(doc.Source.ReportedAt)
	switch {
	case lag > e.lagTolerance:
		log.Debug().Msgf("leader heartbeat lag [%v] exceeds tolerance [%v]", lag, e.lagTolerance)
		e.lastSeen = doc
		e.setState(USURPER)
		return true
	case doc.Source.HolderId == e.holderId:
		// Our own heartbeat, possibly from before a restart of the loop.
		e.lastSeen = doc
		e.setState(LEADER)
		return true
	default:
		e.lastSeen = nil
		e.setState(FOLLOWER)
		return false
	}
}

// claim creates the lock document; only one claimant's create can succeed.
func (e *EsLock) claim() bool {
	doc, err := e.writeHeartbeat(nil)
	if err != nil {
		if _, lost := err.(Conflict); !lost {
			log.Error().Err(err).Msg("Leader lock claim failed")
		}
		e.lastSeen = nil
		e.setState(FOLLOWER)
		return false
	}
	e.lastSeen = doc
	e.setState(LEADER)
	return false
}

// usurp takes over a stale lock document with a conditional write against
// the exact version observed as stale.
func (e *EsLock) usurp() bool {
	if e.lastSeen == nil {
		log.Error().Msg("No observed lock document to take over")
		e.setState(FOLLOWER)
		return false
	}
	doc, err := e.writeHeartbeat(&e.lastSeen.StoreTerm)
	switch err.(type) {
	case nil:
		e.lastSeen = doc
		e.setState(LEADER)
		return true
	case NotFound:
		e.lastSeen = nil
		e.setState(CLAIMANT)
		return true
	case Conflict:
		e.lastSeen = nil
		e.setState(FOLLOWER)
		return false
	default:
		log.Error().Err(err).Msg("Leader lock takeover failed")
		e.lastSeen = nil
		e.setState(FOLLOWER)
		return false
	}
}

// renew refreshes the heartbeat; losing the conditional write means another
// holder took the lock and this one steps down.
func (e *EsLock) renew() bool {
	if e.lastSeen == nil {
		e.setState(FOLLOWER)
		return false
	}
	doc, err := e.writeHeartbeat(&e.lastSeen.StoreTerm)
	switch err.(type) {
	case nil:
		e.lastSeen = doc
		return false
	case NotFound:
		e.lastSeen = nil
		e.setState(CLAIMANT)
		return true
	case Conflict:
		e.lastSeen = nil
		e.setState(FOLLOWER)
		return false
	default:
		log.Error().Err(err).Msg("Leader heartbeat refresh failed")
		e.lastSeen = nil
		e.setState(FOLLOWER)
		return false
	}
}

func (e *EsLock) readLockDoc() (*lockDoc, error) {
	tx := e.tracer.BackgroundTx("leader-lock-read")
	defer tx.End()

	getReq := esapi.GetRequest{
		Index:      string(IndexName),
		DocumentID: string(e.lockDocId),
	}
	rawResp, err := getReq.Do(tx.Context(), e.client)
	if err != nil {
		return nil, common.ElasticsearchErr{Underlying: err}
	}
	defer rawResp.Body.Close()
	switch rawResp.StatusCode {
	case 200:
		var hit esLockHit
		if err := json.NewDecoder(rawResp.Body).Decode(&hit); err != nil {
			return nil, common.JsonSerdesErr{Underlying: []error{err}}
		}
		return hit.toLockDoc(), nil
	case 404:
		return nil, NotFound{}
	default:
		return nil, common.UnexpectedEsStatusError(rawResp)
	}
}

// writeHeartbeat writes this holder's heartbeat into the lock document. A
// nil guard creates the document; a non-nil guard replaces exactly the
// version it names. Both shapes map a lost race to Conflict.
func (e *EsLock) writeHeartbeat(guard *metadata.StoreTerm) (*lockDoc, error) {
	tx := e.tracer.BackgroundTx("leader-lock-write")
	defer tx.End()
	ctx := tx.Context()

	now := e.getUTC()
	heartbeat := lockHeartbeat{
		HolderId:   e.holderId,
		ReportedAt: now,
	}
	heartbeatBytes, err := json.Marshal(heartbeat)
	if err != nil {
		return nil, common.JsonSerdesErr{Underlying: []error{err}}
	}

	var rawResp *esapi.Response
	if guard == nil {
		createReq := esapi.CreateRequest{
			Index:      string(IndexName),
			DocumentID: string(e.lockDocId),
			Body:       bytes.NewReader(heartbeatBytes),
		}
		rawResp, err = createReq.Do(ctx, e.client)
	} else {
		// The Index API rather than the update API: partial updates have
		// no place here, the heartbeat is the whole document.
		indexReq := esapi.IndexRequest{
			Index:         string(IndexName),
			DocumentID:    string(e.lockDocId),
			Body:          bytes.NewReader(heartbeatBytes),
			IfPrimaryTerm: esapi.IntPtr(int(guard.PrimaryTerm)),
			IfSeqNo:       esapi.IntPtr(int(guard.SeqNum)),
		}
		rawResp, err = indexReq.Do(ctx, e.client)
	}
	if err != nil {
		return nil, common.ElasticsearchErr{Underlying: err}
	}
	defer rawResp.Body.Close()

	statusCode := rawResp.StatusCode
	switch {
	case 200 <= statusCode && statusCode <= 299:
		var resp common.EsUpdateResponse
		if err := json.NewDecoder(rawResp.Body).Decode(&resp); err != nil {
			return nil, common.JsonSerdesErr{Underlying: []error{err}}
		}
		return &lockDoc{
			StoreTerm: resp.StoreTerm(),
			Source:    heartbeat,
		}, nil
	case statusCode == 409:
		return nil, Conflict{}
	case statusCode == 404:
		return nil, NotFound{}
	default:
		return nil, common.UnexpectedEsStatusError(rawResp)
	}
}

type NotFound struct{}

func (n NotFound) Error() string {
	return "Lock document does not exist"
}

type Conflict struct{}

func (n Conflict) Error() string {
	return "Lost the conditional write on the lock document"
}

type lockHeartbeat struct {
	HolderId   holderId  `json:"holder_id"`
	ReportedAt time.Time `json:"reported_at"`
}

type lockDoc struct {
	StoreTerm metadata.StoreTerm
	Source    lockHeartbeat
}

type esLockHit struct {
	ID          string        `json:"_id"`
	SeqNum      uint64        `json:"_seq_no"`
	PrimaryTerm uint64        `json:"_primary_term"`
	Source      lockHeartbeat `json:"_source"`
}

func (h *esLockHit) toLockDoc() *lockDoc {
	return &lockDoc{
		StoreTerm: metadata.StoreTerm{
			SeqNum:      metadata.SeqNum(h.SeqNum),
			PrimaryTerm: metadata.PrimaryTerm(h.PrimaryTerm),
		},
		Source: h.Source,
	}
}
