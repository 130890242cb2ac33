package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worklog-engine/events"
)

type fakeChannel struct {
	exchange, key string
	published     []amqp091.Publishing
	err           error
	closed        bool
	hadDeadline   bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	_, f.hadDeadline = ctx.Deadline()
	f.exchange, f.key = exchange, key
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	// GIVEN: A publisher on a fake channel with a fixed clock
	ch := &fakeChannel{}
	p := newPublisher(ch, "worklog", "worklog.events", zerolog.Nop())
	fixed := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	// WHEN: Publishing an event without a timestamp
	err := p.Publish(context.Background(), events.Event{Type: events.PeriodClosed, Period: "2024-02-27"})

	// THEN: One persistent JSON message, routed by queue name, stamped with the clock
	require.NoError(t, err)
	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "worklog", ch.exchange)
	assert.Equal(t, "worklog.events", ch.key)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)
	assert.Equal(t, "period.closed", msg.Type)
	assert.True(t, ch.hadDeadline)

	decoded, err := events.FromJSON(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-27", decoded.Period)
	assert.True(t, fixed.Equal(decoded.OccurredAt))
}

func TestPublisher_PublishError(t *testing.T) {
	boom := errors.New("channel closed")
	p := newPublisher(&fakeChannel{err: boom}, "x", "q", zerolog.Nop())

	err := p.Publish(context.Background(), events.Event{Type: events.EntryDeleted})

	assert.ErrorIs(t, err, boom)
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "x", "q", zerolog.Nop())

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
