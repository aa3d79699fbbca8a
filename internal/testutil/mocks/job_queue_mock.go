package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueImport(export models.DeckExport) error {
	args := m.Called(export)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueSessionRecord(record models.StudySession) error {
	args := m.Called(record)
	return args.Error(0)
}
