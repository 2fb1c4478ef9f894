package eventbus_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlproj/internal/eventbus"
)

type ping struct{ N int }
type pong struct{ S string }

func TestBus(t *testing.T) {
	bus := eventbus.New()
	var got []string

	unsubA := eventbus.Subscribe(bus, func(_ context.Context, p ping) { got = append(got, "a") })
	eventbus.Subscribe(bus, func(_ context.Context, p ping) { got = append(got, "b") })
	eventbus.Subscribe(bus, func(_ context.Context, p pong) { got = append(got, "pong:"+p.S) })

	eventbus.Publish(context.Background(), bus, ping{N: 1})
	eventbus.Publish(context.Background(), bus, pong{S: "x"})
	require.Equal(t, []string{"a", "b", "pong:x"}, got)

	unsubA()
	unsubA()
	got = nil
	eventbus.Publish(context.Background(), bus, ping{N: 2})
	require.Equal(t, []string{"b"}, got)
}

func TestNilBus(t *testing.T) {
	var bus *eventbus.Bus
	unsub := eventbus.Subscribe(bus, func(context.Context, ping) { t.Fatal("unexpected call") })
	eventbus.Publish(context.Background(), bus, ping{})
	unsub()
}
