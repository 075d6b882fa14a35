package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	err     error
	msgs    []published
	drained bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, published{subject: subject, data: data})
	return nil
}

func (c *fakeConn) Drain() error {
	c.drained = true
	return nil
}

func newTestPublisher(conn *fakeConn) *Publisher {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Publisher{conn: conn, logger: logger.WithField("component", "events.publisher")}
}

func TestPublisher_PublishWrapsPayload(t *testing.T) {
	conn := &fakeConn{}
	p := newTestPublisher(conn)

	err := p.Publish(context.Background(), "catalog.product.deleted", map[string]string{"id": "prod_1"})
	require.NoError(t, err)
	require.Len(t, conn.msgs, 1)
	assert.Equal(t, "catalog.product.deleted", conn.msgs[0].subject)

	var event struct {
		ID      string            `json:"id"`
		Subject string            `json:"subject"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(conn.msgs[0].data, &event))
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "catalog.product.deleted", event.Subject)
	assert.Equal(t, "prod_1", event.Data["id"])
}

func TestPublisher_PublishErrors(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	p := newTestPublisher(conn)

	err := p.Publish(context.Background(), "catalog.category.saved", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.category.saved")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	conn.err = nil
	assert.ErrorIs(t, p.Publish(ctx, "catalog.category.saved", nil), context.Canceled)
	assert.Empty(t, conn.msgs)
}

func TestPublisher_UnencodablePayload(t *testing.T) {
	conn := &fakeConn{}
	p := newTestPublisher(conn)

	err := p.Publish(context.Background(), "catalog.product.saved", func() {})
	require.Error(t, err)
	assert.Empty(t, conn.msgs)
}

func TestPublisher_CloseDrains(t *testing.T) {
	conn := &fakeConn{}
	newTestPublisher(conn).Close()
	assert.True(t, conn.drained)
}
