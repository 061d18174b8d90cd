package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }

func samplePayload() CheckoutSubmittedPayload {
	return CheckoutSubmittedPayload{
		UserID:           "alice",
		ProductIDs:       []string{"p1", "p2"},
		ShippingMethodID: 2,
		PaymentMethod:    "vnpay",
		Subtotal:         250000,
		Discount:         25000,
		ShippingCost:     30000,
		GrandTotal:       255000,
	}
}

func TestBuildCheckoutSubmittedEvent(t *testing.T) {
	ev, err := BuildCheckoutSubmittedEvent(samplePayload(), EnvelopeOptions{
		CorrelationID: "cid-1",
		Now:           fixedNow,
	})
	require.NoError(t, err)

	assert.Equal(t, EventTypeCheckoutSubmitted, ev.EventName)
	assert.Equal(t, 1, ev.EventVersion)
	assert.Equal(t, "alice", ev.PartitionKey)
	assert.Equal(t, "cid-1", ev.CorrelationID)
	assert.Equal(t, "storefront-go", ev.Producer)
	assert.Equal(t, fixedNow(), ev.OccurredAt)
	assert.Equal(t, fixedNow(), ev.Payload.SubmittedAt)
	_, err = uuid.Parse(ev.EventID)
	assert.NoError(t, err)
	assert.NoError(t, ValidateCheckoutSubmitted(ev))

	// mutate to ensure validation fails
	ev.EventName = "WrongName"
	assert.Error(t, ValidateCheckoutSubmitted(ev))
}

func TestBuildCheckoutSubmittedEvent_RequiresUser(t *testing.T) {
	p := samplePayload()
	p.UserID = ""
	_, err := BuildCheckoutSubmittedEvent(p, EnvelopeOptions{})
	assert.Error(t, err)
}

func TestEnvelopeValidate(t *testing.T) {
	ev := EventEnvelope[struct{}]{EventName: "X", EventVersion: 1, EventID: "id", PartitionKey: "k"}
	assert.NoError(t, ev.Validate("X", 1))
	assert.ErrorContains(t, ev.Validate("X", 2), "eventVersion")

	ev.PartitionKey = ""
	assert.ErrorContains(t, ev.Validate("X", 1), "partitionKey")
}

type fakeChannel struct {
	declared  []string
	published []published
	err       error
	closed    bool
}

type published struct {
	exchange, key string
	msg           amqp.Publishing
	hasDeadline   bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+"/"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	_, ok := ctx.Deadline()
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg, hasDeadline: ok})
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisher(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newRabbitPublisher(ch)
	require.NoError(t, err)
	assert.Equal(t, []string{"ecommerce.events/topic"}, ch.declared)

	ev, err := BuildCheckoutSubmittedEvent(samplePayload(), EnvelopeOptions{CorrelationID: "cid-2", Now: fixedNow})
	require.NoError(t, err)
	require.NoError(t, p.PublishCheckoutSubmitted(context.Background(), ev))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, EventsExchange, got.exchange)
	assert.Equal(t, CheckoutSubmittedRoutingKey, got.key)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, ev.EventID, got.msg.MessageId)
	assert.True(t, got.hasDeadline)

	var decoded CheckoutSubmittedEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, ev.Payload.ProductIDs, decoded.Payload.ProductIDs)
	assert.Equal(t, int64(255000), int64(decoded.Payload.GrandTotal))

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitPublisher_RejectsInvalidEnvelope(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newRabbitPublisher(ch)
	require.NoError(t, err)

	err = p.PublishCheckoutSubmitted(context.Background(), CheckoutSubmittedEvent{EventName: "Other"})
	assert.Error(t, err)
	assert.Empty(t, ch.published)
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}

	ev, err := BuildCheckoutSubmittedEvent(samplePayload(), EnvelopeOptions{Now: fixedNow})
	require.NoError(t, err)
	require.NoError(t, p.PublishCheckoutSubmitted(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "alice", string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, EventTypeCheckoutSubmitted, string(w.msgs[0].Headers[0].Value))

	w.err = errors.New("leader not available")
	assert.Error(t, p.PublishCheckoutSubmitted(context.Background(), ev))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishCheckoutSubmitted(context.Background(), CheckoutSubmittedEvent{}))
	assert.NoError(t, p.Close())
}
