// metadata contains models that hold data about data. Since ES will be the one
// and only data store option for this project, we don't even try to abstract
// over things like seq number and primary term; they live here next to the
// user-facing revision counter.
package metadata

import "time"

type CreatedAt time.Time
type ModifiedAt time.Time

// Version is the user-facing revision counter of a record: bumped by exactly
// 1 on every successful write, never on read. This is what clients claim as
// their base when submitting a write.
type Version uint64

type SeqNum uint64
type PrimaryTerm uint64

// StoreTerm is the store-level concurrency anchor for a document, used to
// make the compare-and-swap on writes actually atomic at the ES boundary.
// Never exposed to clients.
type StoreTerm struct {
	SeqNum      SeqNum
	PrimaryTerm PrimaryTerm
}

type Metadata struct {
	CreatedAt  CreatedAt
	ModifiedAt ModifiedAt
	Version    Version
	StoreTerm  StoreTerm
}
