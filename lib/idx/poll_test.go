package idx

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/segmentio/okta-idx/lib/idx/types"
)

func lostConnection() error {
	return &types.APIClientError{
		Kind: types.ErrorKindNetwork,
		URL:  "https://canada.okta.com/idp/idx/challenge/poll",
		Err:  fmt.Errorf("read: connection reset %w", types.ErrConnectionLost),
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPollingCapability(t *testing.T) {
	ctx := context.Background()

	t.Run("polls until the server moves on", func(t *testing.T) {
		flow, transport := newScriptedFlow(t, Config{})
		transport.
			reply(200, idxChallengeEmail("sh-1", 1)).
			reply(200, idxChallengeEmail("sh-1", 1)).
			reply(200, idxSuccess("sh-2", "ic-1"))
		resp := decodeFixture(t, flow, idxChallengeEmail("sh-1", 1))

		poll := resp.Authenticators.Current().Pollable()
		if !assert.NotNil(t, poll) {
			return
		}
		assert.Equal(t, PollIdle, poll.State())
		assert.Equal(t, time.Millisecond, poll.Remediation().Refresh)

		final, err := poll.Proceed(ctx)
		if assert.NoError(t, err) {
			assert.True(t, final.IsLoginSuccessful())
		}
		assert.Equal(t, PollSucceeded, poll.State())
		assert.Len(t, transport.sent(), 3)
		for _, req := range transport.sent() {
			assert.Equal(t, "https://canada.okta.com/idp/idx/challenge/poll", req.URL)
		}
	})

	t.Run("enroll-poll follows the current authenticator", func(t *testing.T) {
		flow, transport := newScriptedFlow(t, Config{})
		transport.
			reply(200, idxEnrollPoll("sh-1", 1)).
			reply(200, idxSuccess("sh-2", "ic-1"))
		resp := decodeFixture(t, flow, idxEnrollPoll("sh-1", 1))

		final, err := resp.Remediations.Get(RemediationEnrollPoll).Pollable().Proceed(ctx)
		if assert.NoError(t, err) {
			assert.True(t, final.IsLoginSuccessful())
		}
		assert.Len(t, transport.sent(), 2)
	})

	t.Run("at most one loop", func(t *testing.T) {
		flow, transport := newScriptedFlow(t, Config{})
		transport.reply(200, idxChallengeEmail("sh-1", 1))
		resp := decodeFixture(t, flow, idxChallengeEmail("sh-1", 1))
		poll := resp.Authenticators.Current().Pollable()

		first := make(chan error, 1)
		go func() {
			_, err := poll.Proceed(ctx)
			first <- err
		}()
		waitFor(t, func() bool { return len(transport.sent()) > 0 })

		second := make(chan error, 1)
		go func() {
			_, err := poll.Proceed(ctx)
			second <- err
		}()

		select {
		case err := <-first:
			assert.Equal(t, ErrPollCancelled, err, "the first loop is cancelled by the second")
		case <-time.After(2 * time.Second):
			t.Fatal("first loop still running")
		}
		assert.Equal(t, PollPolling, poll.State(), "the second loop is running")

		poll.Cancel()
		poll.Cancel()
		select {
		case err := <-second:
			assert.Equal(t, ErrPollCancelled, err)
		case <-time.After(2 * time.Second):
			t.Fatal("second loop still running")
		}
		assert.Equal(t, PollCancelled, poll.State())
	})

	t.Run("other steps cancel polling", func(t *testing.T) {
		flow, transport := newScriptedFlow(t, Config{})
		transport.reply(200, idxChallengeEmail("sh-1", 1))
		resp := decodeFixture(t, flow, idxChallengeEmail("sh-1", 1))
		poll := resp.Authenticators.Current().Pollable()

		done := make(chan error, 1)
		go func() {
			_, err := poll.Proceed(ctx)
			done <- err
		}()
		waitFor(t, func() bool { return poll.State() == PollPolling && len(transport.sent()) > 0 })

		challenge := resp.Remediations.Get(RemediationChallengeAuthenticator)
		challenge.Proceed(ctx, NewParameters().SetString(challenge.Field("credentials.passcode"), "123456"))

		select {
		case err := <-done:
			assert.Equal(t, ErrPollCancelled, err)
		case <-time.After(2 * time.Second):
			t.Fatal("polling was not cancelled")
		}
	})

	t.Run("delay first request", func(t *testing.T) {
		flow, transport := newScriptedFlow(t, Config{Poll: PollOptions{DelayFirstRequest: true}})
		transport.reply(200, idxSuccess("sh-2", "ic-1"))
		resp := decodeFixture(t, flow, idxChallengeEmail("sh-1", 30))

		started := time.Now()
		_, err := resp.Authenticators.Current().Pollable().Proceed(ctx)
		assert.NoError(t, err)
		assert.True(t, time.Since(started) >= 30*time.Millisecond, "waited one interval first")
	})

	t.Run("lost connection", func(t *testing.T) {
		flow, transport := newScriptedFlow(t, Config{})
		transport.fail(lostConnection())
		resp := decodeFixture(t, flow, idxChallengeEmail("sh-1", 1))
		poll := resp.Authenticators.Current().Pollable()

		_, err := poll.Proceed(ctx)
		assert.True(t, errors.Is(err, types.ErrConnectionLost))
		assert.Equal(t, PollFailed, poll.State())
	})

	t.Run("lost connection ignored", func(t *testing.T) {
		flow, transport := newScriptedFlow(t, Config{Poll: PollOptions{IgnoreLostConnection: true}})
		transport.
			fail(lostConnection()).
			fail(lostConnection()).
			reply(200, idxSuccess("sh-2", "ic-1"))
		resp := decodeFixture(t, flow, idxChallengeEmail("sh-1", 1))

		final, err := resp.Authenticators.Current().Pollable().Proceed(ctx)
		if assert.NoError(t, err) {
			assert.True(t, final.IsLoginSuccessful())
		}
		assert.Len(t, transport.sent(), 3)
	})

	t.Run("retries are bounded", func(t *testing.T) {
		flow, transport := newScriptedFlow(t, Config{Poll: PollOptions{IgnoreLostConnection: true, MaxRetries: 2}})
		transport.fail(lostConnection())
		resp := decodeFixture(t, flow, idxChallengeEmail("sh-1", 1))

		_, err := resp.Authenticators.Current().Pollable().Proceed(ctx)
		assert.True(t, errors.Is(err, types.ErrConnectionLost))
		assert.Len(t, transport.sent(), 3, "one attempt and two retries")
	})

	t.Run("max duration", func(t *testing.T) {
		flow, transport := newScriptedFlow(t, Config{Poll: PollOptions{MaxDuration: 30 * time.Millisecond}})
		transport.reply(200, idxChallengeEmail("sh-1", 5))
		resp := decodeFixture(t, flow, idxChallengeEmail("sh-1", 5))
		poll := resp.Authenticators.Current().Pollable()

		_, err := poll.Proceed(ctx)
		assert.Equal(t, ErrPollTimeout, err)
		assert.Equal(t, PollFailed, poll.State())
	})

	t.Run("reset stops polling", func(t *testing.T) {
		flow, transport := newScriptedFlow(t, Config{})
		transport.
			reply(200, oktaInteract("ih-1")).
			reply(200, idxChallengeEmail("sh-1", 1000))
		resp, err := flow.Start(ctx)
		if !assert.NoError(t, err) {
			return
		}
		poll := resp.Authenticators.Current().Pollable()

		done := make(chan error, 1)
		go func() {
			_, err := poll.Proceed(ctx)
			done <- err
		}()
		waitFor(t, func() bool { return flow.Response() != resp })
		flow.Reset()

		select {
		case err := <-done:
			assert.Equal(t, ErrPollCancelled, err)
		case <-time.After(500 * time.Millisecond):
			t.Fatal("polling survived a reset")
		}
		assert.Equal(t, PollCancelled, poll.State())
		assert.Len(t, transport.sent(), 3, "no request after the reset")
	})

	t.Run("steps from a later response stop polling", func(t *testing.T) {
		flow, transport := newScriptedFlow(t, Config{})
		transport.
			reply(200, oktaInteract("ih-1")).
			reply(200, idxChallengeEmail("sh-1", 1000))
		resp, err := flow.Start(ctx)
		if !assert.NoError(t, err) {
			return
		}
		poll := resp.Authenticators.Current().Pollable()

		done := make(chan error, 1)
		go func() {
			_, err := poll.Proceed(ctx)
			done <- err
		}()
		waitFor(t, func() bool { return flow.Response() != resp })

		later := flow.Response()
		challenge := later.Remediations.Get(RemediationChallengeAuthenticator)
		_, err = flow.Resume(ctx, challenge, NewParameters().SetString(challenge.Field("credentials.passcode"), "123456"))
		assert.NoError(t, err)

		select {
		case err := <-done:
			assert.Equal(t, ErrPollCancelled, err)
		case <-time.After(500 * time.Millisecond):
			t.Fatal("polling survived a later step")
		}
		assert.Equal(t, PollCancelled, poll.State())
		assert.Equal(t, "https://canada.okta.com/idp/idx/challenge/answer", transport.sent()[3].URL)
	})

	t.Run("a poll step polls itself", func(t *testing.T) {
		flow, transport := newScriptedFlow(t, Config{})
		transport.reply(200, idxSuccess("sh-2", "ic-1"))
		resp := decodeFixture(t, flow, idxChallengePush("sh-1", 1))

		rem := resp.Remediations.Get(RemediationChallengePoll)
		if !assert.NotNil(t, rem.Pollable()) {
			return
		}
		assert.Equal(t, rem, rem.Pollable().Remediation())
		own := resp.Authenticators.Current().Pollable()
		assert.Equal(t, RemediationPoll, own.Remediation().Type, "the authenticator keeps its own poll step")

		_, err := rem.Pollable().Proceed(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "https://canada.okta.com/idp/idx/authenticators/poll", transport.sent()[0].URL)
		assert.Equal(t, PollIdle, own.State())
	})
}
