package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"contract-exchange/internal/domain"
	"contract-exchange/internal/mocks"
	"contract-exchange/internal/service/outbox"
)

func TestOutboxService_Enqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("Persists a pending event with the marshalled payload", func(t *testing.T) {
		repo := new(mocks.OutboxRepository)
		svc := outbox.NewService(repo, zap.NewNop())

		payload := domain.ListingEventPayload{
			ListingID: uuid.New(),
			OwnerID:   uuid.New(),
			Title:     "Phase II SBIR contract",
			Status:    domain.ListingActive,
		}
		repo.On("Enqueue", ctx, mock.MatchedBy(func(event *domain.OutboxEvent) bool {
			var got domain.ListingEventPayload
			if err := json.Unmarshal(event.Payload, &got); err != nil {
				return false
			}
			return event.Type == domain.EventListingModerated &&
				event.Status == domain.OutboxPending &&
				event.ID != uuid.Nil &&
				got.ListingID == payload.ListingID
		})).Return(nil).Once()

		err := svc.Enqueue(ctx, domain.EventListingModerated, payload)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Unmarshalable payload never reaches the store", func(t *testing.T) {
		repo := new(mocks.OutboxRepository)
		svc := outbox.NewService(repo, zap.NewNop())

		err := svc.Enqueue(ctx, domain.EventListingModerated, make(chan int))

		assert.Error(t, err)
		repo.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	})
}

// runOnce drives the worker through a single poll cycle: it cancels the
// run context as soon as the repository records the expected outcome.
func runOnce(t *testing.T, worker *outbox.Worker, done <-chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(finished)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never processed the due event")
	}
	cancel()
	<-finished
}

func TestOutboxWorker(t *testing.T) {
	event := domain.OutboxEvent{
		ID:      uuid.New(),
		Type:    domain.EventListingModerated,
		Payload: []byte(`{}`),
		Status:  domain.OutboxPending,
	}

	t.Run("Delivered event is marked delivered", func(t *testing.T) {
		repo := new(mocks.OutboxRepository)
		dispatcher := new(mocks.Dispatcher)
		worker := outbox.NewWorker(repo, dispatcher, 5*time.Millisecond, 5, zap.NewNop())

		done := make(chan struct{})
		repo.On("ListDue", mock.Anything, mock.Anything).Return([]domain.OutboxEvent{event}, nil).Once()
		repo.On("ListDue", mock.Anything, mock.Anything).Return([]domain.OutboxEvent{}, nil).Maybe()
		dispatcher.On("Deliver", mock.Anything, event).Return(nil).Once()
		repo.On("MarkDelivered", mock.Anything, event.ID).Run(func(mock.Arguments) {
			close(done)
		}).Return(nil).Once()

		runOnce(t, worker, done)

		repo.AssertExpectations(t)
		dispatcher.AssertExpectations(t)
		repo.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed delivery is rescheduled with a future attempt", func(t *testing.T) {
		repo := new(mocks.OutboxRepository)
		dispatcher := new(mocks.Dispatcher)
		worker := outbox.NewWorker(repo, dispatcher, 5*time.Millisecond, 5, zap.NewNop())

		done := make(chan struct{})
		repo.On("ListDue", mock.Anything, mock.Anything).Return([]domain.OutboxEvent{event}, nil).Once()
		repo.On("ListDue", mock.Anything, mock.Anything).Return([]domain.OutboxEvent{}, nil).Maybe()
		dispatcher.On("Deliver", mock.Anything, event).Return(errors.New("smtp down")).Once()
		repo.On("MarkFailed", mock.Anything, event.ID, "smtp down", mock.MatchedBy(func(next *time.Time) bool {
			return next != nil && next.After(time.Now())
		})).Run(func(mock.Arguments) {
			close(done)
		}).Return(nil).Once()

		runOnce(t, worker, done)

		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "MarkDelivered", mock.Anything, mock.Anything)
	})

	t.Run("Exhausted attempt budget parks the event", func(t *testing.T) {
		repo := new(mocks.OutboxRepository)
		dispatcher := new(mocks.Dispatcher)
		worker := outbox.NewWorker(repo, dispatcher, 5*time.Millisecond, 3, zap.NewNop())

		exhausted := event
		exhausted.Attempts = 2

		done := make(chan struct{})
		repo.On("ListDue", mock.Anything, mock.Anything).Return([]domain.OutboxEvent{exhausted}, nil).Once()
		repo.On("ListDue", mock.Anything, mock.Anything).Return([]domain.OutboxEvent{}, nil).Maybe()
		dispatcher.On("Deliver", mock.Anything, exhausted).Return(errors.New("smtp down")).Once()
		repo.On("MarkFailed", mock.Anything, exhausted.ID, "smtp down", (*time.Time)(nil)).Run(func(mock.Arguments) {
			close(done)
		}).Return(nil).Once()

		runOnce(t, worker, done)

		repo.AssertExpectations(t)
	})
}
