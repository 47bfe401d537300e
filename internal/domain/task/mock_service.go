package task

import (
	"context"

	"github.com/kalyan021004/todoboard/internal/domain/board"
)

var MockDomainTask = Task{
	ID:    "mock",
	Board: "b",
}

type MockTasksService struct {
	CreateCalled    uint
	CreateOverride  func() (*Task, error)
	GetCalled       uint
	GetOverride     func() (*Task, error)
	ListCalled      uint
	ListOverride    func() ([]Task, error)
	UpdateCalled    uint
	UpdateOverride  func(t *Task) (*Task, error)
	DeleteCalled    uint
	DeleteOverride  func(t *Task) error
	RefreshCalled   uint
	RefreshOverride func() error
}

func (m *MockTasksService) Create(ctx context.Context, task *NewTask) (*Task, error) {
	m.CreateCalled++
	if m.CreateOverride != nil {
		return m.CreateOverride()
	} else {
		return &MockDomainTask, nil
	}
}

func (m *MockTasksService) Get(ctx context.Context, board board.Name, taskId Id) (*Task, error) {
	m.GetCalled++
	if m.GetOverride != nil {
		return m.GetOverride()
	} else {
		return &MockDomainTask, nil
	}
}

func (m *MockTasksService) List(ctx context.Context, board board.Name) ([]Task, error) {
	m.ListCalled++
	if m.ListOverride != nil {
		return m.ListOverride()
	} else {
		return []Task{MockDomainTask}, nil
	}
}

func (m *MockTasksService) Update(ctx context.Context, task *Task) (*Task, error) {
	m.UpdateCalled++
	if m.UpdateOverride != nil {
		return m.UpdateOverride(task)
	} else {
		return &MockDomainTask, nil
	}
}

func (m *MockTasksService) Delete(ctx context.Context, task *Task) error {
	m.DeleteCalled++
	if m.DeleteOverride != nil {
		return m.DeleteOverride(task)
	} else {
		return nil
	}
}

func (m *MockTasksService) Refresh(ctx context.Context, board board.Name) error {
	m.RefreshCalled++
	if m.RefreshOverride != nil {
		return m.RefreshOverride()
	} else {
		return nil
	}
}
