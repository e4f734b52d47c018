package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

type writerMock struct {
	mock.Mock
}

func (m *writerMock) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *writerMock) Close() error {
	return m.Called().Error(0)
}

func TestPublish(t *testing.T) {
	w := &writerMock{}
	p := NewProducerWithWriter(w, logger.NewNop())

	event := domain.OutboxEvent{
		ID:            uuid.MustParse("2b1d7a5e-8f46-4a3b-9a57-0c0e1a6d2f11"),
		AggregateType: domain.AggregateAppointment,
		AggregateID:   11,
		EventType:     domain.EventAppointmentCreated,
		Payload:       json.RawMessage(`{"appointmentId":11}`),
		CreatedAt:     time.Date(2025, time.June, 2, 17, 0, 0, 0, time.UTC),
	}

	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafkago.Message) bool {
		if len(msgs) != 1 {
			return false
		}
		m := msgs[0]
		return string(m.Key) == "appointment-11" &&
			string(m.Value) == `{"appointmentId":11}` &&
			len(m.Headers) == 2 &&
			string(m.Headers[0].Value) == event.ID.String() &&
			string(m.Headers[1].Value) == "appointment.created"
	})).Return(nil).Once()

	require.NoError(t, p.Publish(context.Background(), []domain.OutboxEvent{event}))
	require.NoError(t, p.Publish(context.Background(), nil))
	w.AssertExpectations(t)
}

func TestPublish_Error(t *testing.T) {
	w := &writerMock{}
	p := NewProducerWithWriter(w, logger.NewNop())
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("leader not available"))

	err := p.Publish(context.Background(), []domain.OutboxEvent{{AggregateType: "payment", AggregateID: 1}})
	assert.ErrorIs(t, err, ErrPublish)
}

func TestClose(t *testing.T) {
	w := &writerMock{}
	w.On("Close").Return(nil).Once()
	require.NoError(t, NewProducerWithWriter(w, logger.NewNop()).Close())
	w.AssertExpectations(t)
}
