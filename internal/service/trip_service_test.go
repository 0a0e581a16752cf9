package service

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yakoovad/planner/internal/events"
	"github.com/yakoovad/planner/internal/model"
	"github.com/yakoovad/planner/internal/notify"
	"github.com/yakoovad/planner/internal/repository"
	"github.com/yakoovad/planner/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"testing"
	"time"
)

var testNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func testLinks(t *testing.T) *Links {
	t.Helper()
	links, err := NewLinks("http://api.test", "http://rsvp.test", "http://web.test")
	require.NoError(t, err)
	return links
}

func validNewTrip() *model.NewTrip {
	return &model.NewTrip{
		Destination:    "Florianópolis",
		StartsAt:       testNow.Add(24 * time.Hour),
		EndsAt:         testNow.Add(6 * 24 * time.Hour),
		OwnerName:      "Alice",
		OwnerEmail:     "alice@x.com",
		EmailsToInvite: []string{"bob@x.com", "carol@x.com"},
	}
}

func TestTripService_CreateTrip(t *testing.T) {
	tests := []struct {
		name          string
		input         func() *model.NewTrip
		setupMocks    func(*MockTripRepository, *MockParticipantRepository, *MockNotifier)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:  "success: owner plus two invitees",
			input: validNewTrip,
			setupMocks: func(tr *MockTripRepository, pr *MockParticipantRepository, n *MockNotifier) {
				tr.On("Create", mock.Anything, mock.MatchedBy(func(trip *repository.Trip) bool {
					return trip.Destination == "Florianópolis" && !trip.IsConfirmed && trip.ID != uuid.Nil
				})).Return(nil)

				pr.On("CreateMany", mock.Anything, mock.MatchedBy(func(ps []*repository.Participant) bool {
					if len(ps) != 3 {
						return false
					}
					owners := 0
					for _, p := range ps {
						if p.TripID != ps[0].TripID {
							return false
						}
						if p.IsOwner {
							owners++
							if !p.IsConfirmed || p.Name == nil || *p.Name != "Alice" || p.Email != "alice@x.com" {
								return false
							}
						} else if p.IsConfirmed || p.Name != nil {
							return false
						}
					}
					return owners == 1
				})).Return(nil)

				n.On("SendConfirmationEmail", mock.Anything,
					notify.Recipient{Name: "Alice", Email: "alice@x.com"},
					mock.MatchedBy(func(tc notify.TripContext) bool {
						return tc.Kind == notify.KindTripCreated &&
							tc.Link == "http://api.test/trips/"+tc.TripID.String()+"/confirm"
					}),
				).Return(nil).Once()
			},
		},
		{
			name: "success: no invitees",
			input: func() *model.NewTrip {
				in := validNewTrip()
				in.EmailsToInvite = nil
				return in
			},
			setupMocks: func(tr *MockTripRepository, pr *MockParticipantRepository, n *MockNotifier) {
				tr.On("Create", mock.Anything, mock.Anything).Return(nil)
				pr.On("CreateMany", mock.Anything, mock.MatchedBy(func(ps []*repository.Participant) bool {
					return len(ps) == 1 && ps[0].IsOwner
				})).Return(nil)
				n.On("SendConfirmationEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "success: owner email failure does not fail creation",
			input: validNewTrip,
			setupMocks: func(tr *MockTripRepository, pr *MockParticipantRepository, n *MockNotifier) {
				tr.On("Create", mock.Anything, mock.Anything).Return(nil)
				pr.On("CreateMany", mock.Anything, mock.Anything).Return(nil)
				n.On("SendConfirmationEmail", mock.Anything, mock.Anything, mock.Anything).
					Return(&notify.SendError{Recipient: "alice@x.com", Err: errors.New("smtp down")})
			},
		},
		{
			name: "failure: start date in the past",
			input: func() *model.NewTrip {
				in := validNewTrip()
				in.StartsAt = testNow.Add(-24 * time.Hour)
				return in
			},
			setupMocks:    func(*MockTripRepository, *MockParticipantRepository, *MockNotifier) {},
			expectedError: true,
			errorCode:     ErrorCodeInvalidStartDate,
		},
		{
			name: "failure: end date before start",
			input: func() *model.NewTrip {
				in := validNewTrip()
				in.EndsAt = in.StartsAt.Add(-time.Hour)
				return in
			},
			setupMocks:    func(*MockTripRepository, *MockParticipantRepository, *MockNotifier) {},
			expectedError: true,
			errorCode:     ErrorCodeInvalidEndDate,
		},
		{
			name:  "failure: trip insert fails",
			input: validNewTrip,
			setupMocks: func(tr *MockTripRepository, pr *MockParticipantRepository, n *MockNotifier) {
				tr.On("Create", mock.Anything, mock.Anything).Return(errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodePersistence,
		},
		{
			name:  "failure: participants insert fails",
			input: validNewTrip,
			setupMocks: func(tr *MockTripRepository, pr *MockParticipantRepository, n *MockNotifier) {
				tr.On("Create", mock.Anything, mock.Anything).Return(nil)
				pr.On("CreateMany", mock.Anything, mock.Anything).Return(repository.ErrAlreadyExists)
			},
			expectedError: true,
			errorCode:     ErrorCodePersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockTripRepo := new(MockTripRepository)
			mockParticipantRepo := new(MockParticipantRepository)
			mockNotifier := new(MockNotifier)

			tt.setupMocks(mockTripRepo, mockParticipantRepo, mockNotifier)

			service := NewTripService(mockTx, testLinks(t)).
				WithTripRepo(mockTripRepo).
				WithParticipantRepo(mockParticipantRepo).
				WithNotifier(mockNotifier).
				WithClock(testClock)

			id, err := service.CreateTrip(context.Background(), tt.input())

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Equal(t, uuid.Nil, id)
				mockNotifier.AssertNotCalled(t, "SendConfirmationEmail", mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.Nil(t, err)
				assert.NotEqual(t, uuid.Nil, id)
			}

			mockTripRepo.AssertExpectations(t)
			mockParticipantRepo.AssertExpectations(t)
			mockNotifier.AssertExpectations(t)
		})
	}
}

func TestTripService_CreateTrip_InvalidDatesSkipPersistence(t *testing.T) {
	mockTripRepo := new(MockTripRepository)
	mockParticipantRepo := new(MockParticipantRepository)

	service := NewTripService(new(MockTransactor), testLinks(t)).
		WithTripRepo(mockTripRepo).
		WithParticipantRepo(mockParticipantRepo).
		WithNotifier(new(MockNotifier)).
		WithClock(testClock)

	in := validNewTrip()
	in.StartsAt = testNow.Add(-24 * time.Hour)

	_, err := service.CreateTrip(context.Background(), in)
	require.NotNil(t, err)

	mockTripRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockParticipantRepo.AssertNotCalled(t, "CreateMany", mock.Anything, mock.Anything)
}

func TestTripService_CreateTrip_BestEffortSideEffects(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	mockTripRepo := new(MockTripRepository)
	mockParticipantRepo := new(MockParticipantRepository)
	mockNotifier := new(MockNotifier)
	mockPublisher := new(MockPublisher)

	mockTripRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockParticipantRepo.On("CreateMany", mock.Anything, mock.Anything).Return(nil)
	mockNotifier.On("SendConfirmationEmail", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("relay down"))
	mockPublisher.On("Publish", mock.Anything, events.TripCreated, mock.MatchedBy(func(ev events.TripCreatedEvent) bool {
		return ev.Destination == "Florianópolis" && ev.InvitedCount == 2 && ev.OwnerEmail == "alice@x.com"
	})).Return(errors.New("nats down"))

	service := NewTripService(new(MockTransactor), testLinks(t)).
		WithTripRepo(mockTripRepo).
		WithParticipantRepo(mockParticipantRepo).
		WithNotifier(mockNotifier).
		WithPublisher(mockPublisher).
		WithClock(testClock)

	id, err := service.CreateTrip(ctx, validNewTrip())

	assert.Nil(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, 1, logs.FilterMessage("failed to send owner confirmation email").Len())
	assert.Equal(t, 1, logs.FilterMessage("failed to publish trip created event").Len())
	mockPublisher.AssertExpectations(t)
}

func TestTripService_GetTrip(t *testing.T) {
	tripID := uuid.New()
	ownerName := "Alice"

	tests := []struct {
		name          string
		setupMocks    func(*MockTripRepository, *MockParticipantRepository)
		expectedError bool
		errorCode     ErrorCode
		participants  int
	}{
		{
			name: "success",
			setupMocks: func(tr *MockTripRepository, pr *MockParticipantRepository) {
				tr.On("Get", mock.Anything, tripID).Return(&repository.Trip{
					ID:          tripID,
					Destination: "Florianópolis",
					StartsAt:    testNow.Add(24 * time.Hour),
					EndsAt:      testNow.Add(6 * 24 * time.Hour),
				}, nil)
				pr.On("List", mock.Anything, repository.ParticipantFilter{TripID: tripID}).Return([]*repository.Participant{
					{ID: uuid.New(), TripID: tripID, Name: &ownerName, Email: "alice@x.com", IsOwner: true, IsConfirmed: true},
					{ID: uuid.New(), TripID: tripID, Email: "bob@x.com"},
				}, nil)
			},
			participants: 2,
		},
		{
			name: "failure: trip not found",
			setupMocks: func(tr *MockTripRepository, pr *MockParticipantRepository) {
				tr.On("Get", mock.Anything, tripID).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name: "failure: trip lookup error",
			setupMocks: func(tr *MockTripRepository, pr *MockParticipantRepository) {
				tr.On("Get", mock.Anything, tripID).Return(nil, errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodePersistence,
		},
		{
			name: "failure: participants lookup error",
			setupMocks: func(tr *MockTripRepository, pr *MockParticipantRepository) {
				tr.On("Get", mock.Anything, tripID).Return(&repository.Trip{ID: tripID}, nil)
				pr.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodePersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTripRepo := new(MockTripRepository)
			mockParticipantRepo := new(MockParticipantRepository)

			tt.setupMocks(mockTripRepo, mockParticipantRepo)

			service := NewTripService(new(MockTransactor), testLinks(t)).
				WithTripRepo(mockTripRepo).
				WithParticipantRepo(mockParticipantRepo)

			got, err := service.GetTrip(context.Background(), tripID)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				require.NotNil(t, got)
				assert.Equal(t, tripID, got.Trip.ID)
				assert.Len(t, got.Participants, tt.participants)
				assert.True(t, got.Participants[0].IsOwner)
			}

			mockTripRepo.AssertExpectations(t)
			mockParticipantRepo.AssertExpectations(t)
		})
	}
}
