package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		send        func(p *KafkaPublisher) error
		writerErr   error
		wantChannel string
		wantErr     bool
	}{
		{
			name: "public_topic",
			send: func(p *KafkaPublisher) error {
				return p.Publish(context.Background(), "auction.a1", []byte(`{"type":"NEW_BID"}`))
			},
			wantChannel: "auction.a1",
		},
		{
			name: "private_channel",
			send: func(p *KafkaPublisher) error {
				return p.SendToSubscriber(context.Background(), "alice", []byte(`{"type":"BID_OUTBID"}`))
			},
			wantChannel: "user.alice.notifications",
		},
		{
			name: "writer_failure",
			send: func(p *KafkaPublisher) error {
				return p.Publish(context.Background(), "auctions", []byte(`{}`))
			},
			writerErr: errors.New("broker down"),
			wantErr:   true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w := &recordingWriter{err: tc.writerErr}
			p := &KafkaPublisher{w: w}

			err := tc.send(p)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, w.msgs, 1)
			require.Equal(t, tc.wantChannel, string(w.msgs[0].Key))
			require.Equal(t, channelHeader, w.msgs[0].Headers[0].Key)
			require.Equal(t, tc.wantChannel, string(w.msgs[0].Headers[0].Value))
		})
	}
}

func TestRedisPublisher(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, "auction.a1", SubscriberChannel("alice"))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	msgs := sub.Channel()

	p := NewRedisPublisher(rdb)
	require.NoError(t, p.Publish(ctx, "auction.a1", []byte("public")))
	require.NoError(t, p.SendToSubscriber(ctx, "alice", []byte("private")))

	got := map[string]string{}
	for len(got) < 2 {
		select {
		case m := <-msgs:
			got[m.Channel] = m.Payload
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, received %v", got)
		}
	}
	require.Equal(t, "public", got["auction.a1"])
	require.Equal(t, "private", got["user.alice.notifications"])
}

func TestLogPublisher(t *testing.T) {
	t.Parallel()

	p := NewLogPublisher()
	require.NoError(t, p.Publish(context.Background(), "auctions", []byte(`{}`)))
	require.NoError(t, p.SendToSubscriber(context.Background(), "bob", []byte(`{}`)))
}
