package service

import (
	"context"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/yakoovad/planner/internal/notify"
	"github.com/yakoovad/planner/internal/repository"
)

type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type MockTripRepository struct {
	mock.Mock
}

func (m *MockTripRepository) Create(ctx context.Context, trip *repository.Trip) error {
	args := m.Called(ctx, trip)
	return args.Error(0)
}

func (m *MockTripRepository) Get(ctx context.Context, id uuid.UUID) (*repository.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Trip), args.Error(1)
}

func (m *MockTripRepository) SetConfirmed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) CreateMany(ctx context.Context, participants []*repository.Participant) error {
	args := m.Called(ctx, participants)
	return args.Error(0)
}

func (m *MockParticipantRepository) List(ctx context.Context, filter repository.ParticipantFilter) ([]*repository.Participant, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Participant), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendConfirmationEmail(ctx context.Context, to notify.Recipient, trip notify.TripContext) error {
	args := m.Called(ctx, to, trip)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data any) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
