package conflict

import (
	"context"
	"time"
)

var MockDomainRecord = Record{
	ID:     "mock-conflict",
	Board:  "b",
	TaskId: "mock",
	Status: PENDING,
}

type MockConflictsService struct {
	CreateCalled        uint
	CreateOverride      func(r *Record) (*Record, error)
	GetCalled           uint
	GetOverride         func() (*Record, error)
	ListPendingCalled   uint
	ListPendingOverride func() ([]Record, error)
	UpdateCalled        uint
	UpdateOverride      func(r *Record) (*Record, error)
}

func (m *MockConflictsService) Create(ctx context.Context, record *Record) (*Record, error) {
	m.CreateCalled++
	if m.CreateOverride != nil {
		return m.CreateOverride(record)
	} else {
		return record, nil
	}
}

func (m *MockConflictsService) Get(ctx context.Context, id Id) (*Record, error) {
	m.GetCalled++
	if m.GetOverride != nil {
		return m.GetOverride()
	} else {
		return &MockDomainRecord, nil
	}
}

func (m *MockConflictsService) ListPending(ctx context.Context, detectedBefore time.Time, limit uint) ([]Record, error) {
	m.ListPendingCalled++
	if m.ListPendingOverride != nil {
		return m.ListPendingOverride()
	} else {
		return []Record{MockDomainRecord}, nil
	}
}

func (m *MockConflictsService) Update(ctx context.Context, record *Record) (*Record, error) {
	m.UpdateCalled++
	if m.UpdateOverride != nil {
		return m.UpdateOverride(record)
	} else {
		return record, nil
	}
}
