package idx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/segmentio/okta-idx/lib/idx/types"
)

const (
	interactionCodeGrant = "urn:okta:params:oauth:grant-type:interaction_code"
	interactionRequired  = "interaction_required"
)

var DefaultScopes = []string{"openid", "profile", "offline_access"}

type Config struct {
	// Issuer is the authorization server, e.g.
	// https://example.okta.com/oauth2/default. An org URL without /oauth2
	// uses the org authorization server.
	Issuer       string
	ClientID     string
	ClientSecret string
	Scopes       []string
	RedirectURI  string

	// StrictRelations fails decoding when a relatesTo path does not
	// resolve instead of leaving the reference empty.
	StrictRelations bool

	Poll PollOptions
}

func (c Config) Validate() error {
	if c.Issuer == "" {
		return errors.New("Issuer is required")
	}
	u, err := url.Parse(c.Issuer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("Issuer %q is not an absolute URL", c.Issuer)
	}
	if c.ClientID == "" {
		return errors.New("ClientID is required")
	}
	if c.RedirectURI == "" {
		return errors.New("RedirectURI is required")
	}
	if c.Poll.MaxDuration < 0 || c.Poll.MaxRetries < 0 {
		return errors.New("Poll limits must not be negative")
	}
	return nil
}

func (c Config) ApplyDefaults() Config {
	if len(c.Scopes) == 0 {
		c.Scopes = DefaultScopes
	}
	c.Issuer = strings.TrimSuffix(c.Issuer, "/")
	c.Poll = c.Poll.ApplyDefaults()
	return c
}

func (c Config) oauth2Base() string {
	if strings.Contains(c.Issuer, "/oauth2") {
		return c.Issuer
	}
	return c.Issuer + "/oauth2"
}

func (c Config) interactURL() string { return c.oauth2Base() + "/v1/interact" }
func (c Config) tokenURL() string    { return c.oauth2Base() + "/v1/token" }

func (c Config) introspectURL() string {
	u, err := url.Parse(c.Issuer)
	if err != nil {
		return c.Issuer + "/idp/idx/introspect"
	}
	return u.Scheme + "://" + u.Host + "/idp/idx/introspect"
}

type FlowState int

const (
	FlowNotStarted FlowState = iota
	FlowInteracting
	FlowInRemediation
	FlowExchanging
	FlowSucceeded
	FlowFailed
)

func (s FlowState) String() string {
	switch s {
	case FlowNotStarted:
		return "not started"
	case FlowInteracting:
		return "interacting"
	case FlowInRemediation:
		return "in remediation"
	case FlowExchanging:
		return "exchanging"
	case FlowSucceeded:
		return "succeeded"
	case FlowFailed:
		return "failed"
	}
	return "unknown"
}

// Context is the per-attempt state of a Flow. A new one is created by each
// Start.
type Context struct {
	InteractionHandle string
	CodeVerifier      string
	CodeChallenge     string
	State             string
	Response          *Response
}

type Option func(*Flow)

func WithLogger(l *log.Entry) Option {
	return func(f *Flow) {
		f.log = l
	}
}

// WithClock overrides time.Now for token issue times.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
	}
}

// Flow drives one sign-in attempt at a time. Operations that change the
// attempt are serialized; reads may happen concurrently.
type Flow struct {
	cfg       Config
	transport types.Transport
	log       *log.Entry
	now       func() time.Time

	// op serializes Start, Resume, Introspect, ExchangeCode, Cancel and
	// Reset.
	op sync.Mutex

	mu        sync.RWMutex
	state     FlowState
	epoch     uint64
	ictx      *Context
	observers []Observer
	// polls counts the running loops of each capability.
	polls map[*PollingCapability]int

	notify sync.Mutex
}

func NewFlow(cfg Config, transport types.Transport, opts ...Option) (*Flow, error) {
	cfg = cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, errors.New("transport is required")
	}
	f := &Flow{
		cfg:       cfg,
		transport: transport,
		log:       log.NewEntry(log.StandardLogger()),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Flow) Config() Config { return f.cfg }

func (f *Flow) State() FlowState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Context returns a copy of the current attempt, or nil before Start.
func (f *Flow) Context() *Context {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.ictx == nil {
		return nil
	}
	c := *f.ictx
	return &c
}

// Response is the latest Response observed, or nil.
func (f *Flow) Response() *Response {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.ictx == nil {
		return nil
	}
	return f.ictx.Response
}

func (f *Flow) Subscribe(o Observer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, o)
}

// Start resets any previous attempt, obtains an interaction handle and
// returns the first Response.
func (f *Flow) Start(ctx context.Context) (*Response, error) {
	f.op.Lock()
	defer f.op.Unlock()

	f.reset()
	epoch := f.currentEpoch()

	verifier, challenge, err := pkce()
	if err != nil {
		return nil, f.fail(epoch, fmt.Errorf("generating pkce: %w", err))
	}
	state := newState()

	handle, err := f.interact(ctx, challenge, state)
	if err != nil {
		return nil, f.fail(epoch, err)
	}
	f.log.Debug("Got interaction handle")

	f.mu.Lock()
	f.ictx = &Context{
		InteractionHandle: handle,
		CodeVerifier:      verifier,
		CodeChallenge:     challenge,
		State:             state,
	}
	f.state = FlowInteracting
	f.mu.Unlock()

	resp, err := f.introspect(ctx, epoch, handle)
	f.observe(epoch, resp, err)
	return resp, err
}

// Resume submits rem with params. It is the serialized form of
// rem.Proceed.
func (f *Flow) Resume(ctx context.Context, rem *Remediation, params *Parameters) (*Response, error) {
	f.op.Lock()
	defer f.op.Unlock()

	if rem == nil || rem.flow != f {
		return nil, ErrInvalidFlow
	}
	ictx := f.Context()
	if ictx == nil || !f.isCurrent(rem.epoch) {
		return nil, ErrInvalidFlow
	}
	if !ictx.Response.offers(rem) {
		f.log.WithField("remediation", rem.Name).Debug("remediation is not offered by the current response")
		return nil, ErrUnknownRemediationOption
	}
	return rem.Proceed(ctx, params)
}

// Introspect fetches the current server state again, e.g. after the user
// clicked an email magic link.
func (f *Flow) Introspect(ctx context.Context) (*Response, error) {
	f.op.Lock()
	defer f.op.Unlock()

	ictx := f.Context()
	if ictx == nil {
		return nil, ErrInvalidFlow
	}
	epoch := f.currentEpoch()
	resp, err := f.introspect(ctx, epoch, ictx.InteractionHandle)
	f.observe(epoch, resp, err)
	return resp, err
}

// ExchangeCode trades the interaction code of resp for a Token. When resp
// is nil the current Response is used. A failed exchange can be retried.
func (f *Flow) ExchangeCode(ctx context.Context, resp *Response) (*Token, error) {
	f.op.Lock()
	defer f.op.Unlock()

	ictx := f.Context()
	if ictx == nil {
		return nil, ErrInvalidFlow
	}
	if resp == nil {
		resp = ictx.Response
	}
	if resp == nil || !resp.IsLoginSuccessful() || !f.isCurrent(resp.epoch) {
		return nil, ErrInvalidFlow
	}
	code := resp.interactionCode()
	if code == "" {
		return nil, fmt.Errorf("%w: success response has no interaction_code", ErrInvalidRequestData)
	}
	href := resp.success.Href
	if href == "" {
		href = f.cfg.tokenURL()
	}
	return f.exchange(ctx, resp.epoch, href, code, ictx)
}

// ExchangeRedirect completes a flow that left through an identity provider
// redirect. redirectURL is the full callback URL.
func (f *Flow) ExchangeRedirect(ctx context.Context, redirectURL string) (*Token, error) {
	f.op.Lock()
	defer f.op.Unlock()

	ictx := f.Context()
	if ictx == nil {
		return nil, ErrInvalidFlow
	}
	epoch := f.currentEpoch()

	if !strings.HasPrefix(redirectURL, f.cfg.RedirectURI) {
		return nil, f.fail(epoch, fmt.Errorf("%w: redirect does not target %s", ErrInvalidRequestData, f.cfg.RedirectURI))
	}
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, f.fail(epoch, fmt.Errorf("%w: %s", ErrInvalidRequestData, err))
	}
	q := u.Query()
	if q.Get("state") != ictx.State {
		return nil, f.fail(epoch, ErrStateMismatch)
	}
	switch e := q.Get("error"); e {
	case "":
	case interactionRequired:
		return nil, f.fail(epoch, ErrInteractionRequired)
	default:
		return nil, f.fail(epoch, &ServerError{Code: e, Description: q.Get("error_description")})
	}
	code := q.Get("interaction_code")
	if code == "" {
		return nil, f.fail(epoch, fmt.Errorf("%w: redirect has no interaction_code", ErrInvalidRequestData))
	}
	return f.exchange(ctx, epoch, f.cfg.tokenURL(), code, ictx)
}

// Cancel abandons the current transaction on the server and resets the
// Flow.
func (f *Flow) Cancel(ctx context.Context) error {
	return f.cancel(ctx, f.Response())
}

func (f *Flow) cancel(ctx context.Context, resp *Response) error {
	f.op.Lock()
	defer f.op.Unlock()

	if resp == nil || resp.cancel == nil || !f.isCurrent(resp.epoch) {
		return ErrInvalidFlow
	}
	if _, err := resp.cancel.Proceed(ctx, nil); err != nil {
		return err
	}
	f.reset()
	return nil
}

// Reset discards the interaction handle, PKCE verifier and current
// Response. Remediations from earlier responses stop working.
func (f *Flow) Reset() {
	f.op.Lock()
	defer f.op.Unlock()
	f.reset()
}

func (f *Flow) reset() {
	f.mu.Lock()
	var current *Response
	if f.ictx != nil {
		current = f.ictx.Response
	}
	f.epoch++
	f.ictx = nil
	f.state = FlowNotStarted
	f.mu.Unlock()

	f.stopPolls()
	if current != nil {
		for _, a := range current.Authenticators.All() {
			if a.poll != nil {
				a.poll.Cancel()
			}
		}
	}
}

func (f *Flow) trackPoll(p *PollingCapability) {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.polls == nil {
		f.polls = map[*PollingCapability]int{}
	}
	f.polls[p]++
}

func (f *Flow) untrackPoll(p *PollingCapability) {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.polls[p] <= 1 {
		delete(f.polls, p)
		return
	}
	f.polls[p]--
}

// stopPolls cancels every running poll loop, whichever Response it was
// started from.
func (f *Flow) stopPolls() {
	if f == nil {
		return
	}
	f.mu.RLock()
	running := make([]*PollingCapability, 0, len(f.polls))
	for p := range f.polls {
		running = append(running, p)
	}
	f.mu.RUnlock()

	for _, p := range running {
		p.Cancel()
	}
}

func (f *Flow) currentEpoch() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.epoch
}

func (f *Flow) isCurrent(epoch uint64) bool {
	if f == nil {
		return false
	}
	return f.currentEpoch() == epoch
}

func (f *Flow) logger() *log.Entry {
	if f == nil || f.log == nil {
		return log.NewEntry(log.StandardLogger())
	}
	return f.log
}

func (f *Flow) strict() bool {
	return f != nil && f.cfg.StrictRelations
}

func (f *Flow) pollOptions() PollOptions {
	if f == nil {
		return PollOptions{}.ApplyDefaults()
	}
	return f.cfg.Poll
}

// observe records the outcome of an operation started in epoch and tells
// the observers. Outcomes from a reset attempt are dropped.
func (f *Flow) observe(epoch uint64, resp *Response, err error) {
	f.notify.Lock()
	defer f.notify.Unlock()

	f.mu.Lock()
	if f.epoch != epoch {
		f.mu.Unlock()
		return
	}
	if resp != nil && f.ictx != nil {
		f.ictx.Response = resp
		f.state = FlowInRemediation
	}
	observers := make([]Observer, len(f.observers))
	copy(observers, f.observers)
	f.mu.Unlock()

	event := Event{Kind: EventResponse, Response: resp}
	if err != nil {
		event = Event{Kind: EventError, Err: err}
	}
	for _, o := range observers {
		o.Observe(event)
	}
}

func (f *Flow) observeToken(epoch uint64, tok *Token) {
	f.notify.Lock()
	defer f.notify.Unlock()

	f.mu.Lock()
	if f.epoch != epoch {
		f.mu.Unlock()
		return
	}
	f.state = FlowSucceeded
	observers := make([]Observer, len(f.observers))
	copy(observers, f.observers)
	f.mu.Unlock()

	for _, o := range observers {
		o.Observe(Event{Kind: EventToken, Token: tok})
	}
}

// fail reports err to observers and returns it. Before an interaction
// handle exists the flow moves to FlowFailed.
func (f *Flow) fail(epoch uint64, err error) error {
	f.mu.Lock()
	if f.epoch == epoch && f.ictx == nil {
		f.state = FlowFailed
	}
	f.mu.Unlock()
	f.observe(epoch, nil, err)
	return err
}

func (f *Flow) setState(epoch uint64, s FlowState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.epoch == epoch {
		f.state = s
	}
}

func (f *Flow) interact(ctx context.Context, challenge, state string) (string, error) {
	form := url.Values{}
	form.Set("client_id", f.cfg.ClientID)
	form.Set("scope", strings.Join(f.cfg.Scopes, " "))
	form.Set("code_challenge", challenge)
	form.Set("code_challenge_method", "S256")
	form.Set("redirect_uri", f.cfg.RedirectURI)
	form.Set("state", state)
	if f.cfg.ClientSecret != "" {
		form.Set("client_secret", f.cfg.ClientSecret)
	}

	res, err := f.send(ctx, "POST", f.cfg.interactURL(), types.ContentTypeForm, types.ContentTypeJSON, []byte(form.Encode()))
	if err != nil {
		return "", err
	}
	if !success(res.StatusCode) {
		return "", oauth2Error(res)
	}

	var out types.InteractResponse
	if err := json.Unmarshal(res.Body, &out); err != nil {
		return "", fmt.Errorf("decoding interact response: %w", err)
	}
	if out.InteractionHandle == "" {
		return "", fmt.Errorf("%w: no interaction handle returned", ErrInvalidFlow)
	}
	return out.InteractionHandle, nil
}

func (f *Flow) introspect(ctx context.Context, epoch uint64, handle string) (*Response, error) {
	body := Object(map[string]Value{"interactionHandle": String(handle)})
	return f.submit(ctx, epoch, "POST", f.cfg.introspectURL(), types.ContentTypeIONJSON, body)
}

func (f *Flow) exchange(ctx context.Context, epoch uint64, href, code string, ictx *Context) (*Token, error) {
	f.setState(epoch, FlowExchanging)

	form := url.Values{}
	form.Set("grant_type", interactionCodeGrant)
	form.Set("interaction_code", code)
	form.Set("client_id", f.cfg.ClientID)
	form.Set("code_verifier", ictx.CodeVerifier)
	form.Set("redirect_uri", f.cfg.RedirectURI)
	if f.cfg.ClientSecret != "" {
		form.Set("client_secret", f.cfg.ClientSecret)
	}

	res, err := f.send(ctx, "POST", href, types.ContentTypeForm, types.ContentTypeJSON, []byte(form.Encode()))
	if err == nil && !success(res.StatusCode) {
		err = oauth2Error(res)
	}
	var raw types.TokenResponse
	if err == nil {
		if jerr := json.Unmarshal(res.Body, &raw); jerr != nil {
			err = fmt.Errorf("decoding token response: %w", jerr)
		} else if raw.AccessToken == "" {
			err = fmt.Errorf("%w: token response has no access_token", types.ErrUnexpectedResponse)
		}
	}
	if err != nil {
		f.setState(epoch, FlowInRemediation)
		f.observe(epoch, nil, err)
		return nil, err
	}

	tok := newToken(raw, f.now())
	f.log.WithField("token_type", tok.TokenType).Debug("Exchanged interaction code")
	f.observeToken(epoch, tok)
	return tok, nil
}

// submit posts body to href and decodes the IDX reply.
func (f *Flow) submit(ctx context.Context, epoch uint64, method, href, accepts string, body Value) (*Response, error) {
	var (
		payload     []byte
		contentType string
		err         error
	)
	if strings.Contains(accepts, "x-www-form-urlencoded") {
		contentType = types.ContentTypeForm
		payload = []byte(formEncode(body).Encode())
	} else {
		contentType = accepts
		if contentType == "" {
			contentType = types.ContentTypeIONJSON
		}
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequestData, err)
		}
	}

	res, err := f.send(ctx, method, href, contentType, types.ContentTypeIONJSON, payload)
	if err != nil {
		return nil, err
	}
	if success(res.StatusCode) {
		return f.decodeResponse(res.Body, epoch)
	}
	return f.decodeFailure(res, epoch)
}

// decodeFailure interprets a non-2xx reply. IDX bodies that still offer
// remediations (e.g. a wrong password) come back as a Response.
func (f *Flow) decodeFailure(res *types.Response, epoch uint64) (*Response, error) {
	var oe types.OAuth2ErrorResponse
	if err := json.Unmarshal(res.Body, &oe); err == nil && oe.Error != "" {
		return nil, &ServerError{StatusCode: res.StatusCode, Code: oe.Error, Description: oe.ErrorDescription}
	}

	var raw rawResponse
	if err := json.Unmarshal(res.Body, &raw); err != nil {
		return nil, &ServerError{StatusCode: res.StatusCode}
	}
	if raw.Remediation != nil && len(raw.Remediation.Value) > 0 {
		return f.buildResponse(&raw, epoch)
	}
	if msgs := newMessages(raw.Messages); len(msgs) > 0 {
		return nil, &ServerError{StatusCode: res.StatusCode, Messages: msgs}
	}
	return nil, &ServerError{StatusCode: res.StatusCode}
}

func (f *Flow) send(ctx context.Context, method, href, contentType, accept string, body []byte) (*types.Response, error) {
	f.log.WithFields(log.Fields{
		"method": method,
		"url":    href,
	}).Debug("Sending request")
	return f.transport.Send(ctx, &types.Request{
		Method:      method,
		URL:         href,
		ContentType: contentType,
		Accept:      accept,
		Body:        body,
	})
}

func oauth2Error(res *types.Response) error {
	var oe types.OAuth2ErrorResponse
	if err := json.Unmarshal(res.Body, &oe); err == nil && oe.Error != "" {
		return &ServerError{StatusCode: res.StatusCode, Code: oe.Error, Description: oe.ErrorDescription}
	}
	return &ServerError{StatusCode: res.StatusCode}
}

func formEncode(body Value) url.Values {
	form := url.Values{}
	obj, _ := body.ObjectValue()
	for k, v := range obj {
		if v.IsNull() {
			continue
		}
		form.Set(k, v.String())
	}
	return form
}

func success(status int) bool {
	return status >= 200 && status < 300
}
