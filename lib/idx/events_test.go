package idx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventObservers(t *testing.T) {
	t.Run("channel drops events when full", func(t *testing.T) {
		o, ch := EventChannel(1)
		o.Observe(Event{Kind: EventResponse})
		o.Observe(Event{Kind: EventToken})

		assert.Len(t, ch, 1)
		assert.Equal(t, EventResponse, (<-ch).Kind)
	})

	t.Run("stream waits for the reader", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		o, ch := EventStream(ctx, 1)

		delivered := make(chan struct{})
		go func() {
			o.Observe(Event{Kind: EventResponse})
			o.Observe(Event{Kind: EventToken})
			close(delivered)
		}()

		select {
		case <-delivered:
			t.Fatal("second event was delivered into a full buffer")
		case <-time.After(20 * time.Millisecond):
		}
		assert.Equal(t, EventResponse, (<-ch).Kind)

		select {
		case <-delivered:
		case <-time.After(2 * time.Second):
			t.Fatal("observer still waiting after a read")
		}
		assert.Equal(t, EventToken, (<-ch).Kind)
	})

	t.Run("stream stops waiting once its context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		o, ch := EventStream(ctx, 1)
		o.Observe(Event{Kind: EventResponse})

		delivered := make(chan struct{})
		go func() {
			o.Observe(Event{Kind: EventToken})
			close(delivered)
		}()
		cancel()

		select {
		case <-delivered:
		case <-time.After(2 * time.Second):
			t.Fatal("observer blocked after cancel")
		}
		o.Observe(Event{Kind: EventError})
		assert.Len(t, ch, 1)
	})

	t.Run("stream receives every flow event", func(t *testing.T) {
		flow, transport := newScriptedFlow(t, Config{})
		transport.
			reply(200, oktaInteract("ih-1")).
			reply(200, idxChallengePassword("sh-1")).
			reply(200, idxSuccess("sh-2", "ic-1")).
			reply(200, oktaToken("access-abc"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		o, ch := EventStream(ctx, 0)
		flow.Subscribe(o)

		kinds := make(chan []EventKind, 1)
		go func() {
			got := []EventKind{}
			for e := range ch {
				got = append(got, e.Kind)
				if e.Kind == EventToken {
					break
				}
			}
			kinds <- got
		}()

		resp, err := flow.Start(ctx)
		if !assert.NoError(t, err) {
			return
		}
		challenge := resp.Remediations.Get(RemediationChallengeAuthenticator)
		resp, err = flow.Resume(ctx, challenge, NewParameters().SetString(challenge.Field("credentials.passcode"), "hunter2"))
		if !assert.NoError(t, err) {
			return
		}
		_, err = flow.ExchangeCode(ctx, resp)
		assert.NoError(t, err)

		select {
		case got := <-kinds:
			assert.Equal(t, []EventKind{EventResponse, EventResponse, EventToken}, got)
		case <-time.After(2 * time.Second):
			t.Fatal("events were not delivered")
		}
	})
}
