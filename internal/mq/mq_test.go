package mq

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/Concert/internal/telemetry"
)

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *fakeAck) Ack(bool) error { a.acked = true; return nil }

func (a *fakeAck) Nack(_, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func TestNewMessage_ParsePayload(t *testing.T) {
	payload := ManifestPublishedPayload{
		BuildID:  uuid.New(),
		DagID:    "sakila.actor",
		Location: "s3://dags/sakila.actor.json",
		Tasks:    12,
	}

	msg, err := NewMessage(MessageTypeManifestPublished, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		t.Errorf("message id should be a uuid: %v", err)
	}

	got, err := ParsePayload[ManifestPublishedPayload](msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != payload {
		t.Errorf("expected %+v, got %+v", payload, got)
	}
}

func TestConsumer_Settle(t *testing.T) {
	handlerErr := errors.New("store unavailable")

	tests := []struct {
		name        string
		body        string
		handlerErr  error
		redelivered bool
		wantAck     bool
		wantRequeue bool
	}{
		{name: "ok", body: `{"id":"1","type":"manifest.published","payload":{}}`, wantAck: true},
		{name: "first failure requeues", body: `{"id":"1","payload":{}}`, handlerErr: handlerErr, wantRequeue: true},
		{name: "second failure goes to dlq", body: `{"id":"1","payload":{}}`, handlerErr: handlerErr, redelivered: true},
		{name: "malformed goes to dlq", body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConsumer(nil, telemetry.Discard(), ConsumerConfig{
				Queue: QueueManifestsPublished,
				Handler: func(context.Context, *Message) error {
					return tt.handlerErr
				},
			})

			ack := &fakeAck{}
			c.settle(ack, c.handle(context.Background(), []byte(tt.body)), tt.redelivered)

			if ack.acked != tt.wantAck {
				t.Errorf("acked = %v, want %v", ack.acked, tt.wantAck)
			}
			if !tt.wantAck && (!ack.nacked || ack.requeue != tt.wantRequeue) {
				t.Errorf("nacked = %v requeue = %v, want requeue %v", ack.nacked, ack.requeue, tt.wantRequeue)
			}
		})
	}
}

func TestConnection_WithChannelWithoutChannel(t *testing.T) {
	c := &Connection{}
	err := c.WithChannel(context.Background(), nil)
	if !errors.Is(err, ErrNoChannel) {
		t.Errorf("expected ErrNoChannel, got %v", err)
	}
}

func TestTopology_String(t *testing.T) {
	s := DefaultTopology().String()
	for _, want := range []string{"concert.manifests (direct)", "manifests.published [routing: published]", "dlq.manifests"} {
		if !strings.Contains(s, want) {
			t.Errorf("topology should mention %q:\n%s", want, s)
		}
	}
}
