package analytics

import (
	"strings"
	"time"

	analytics "github.com/segmentio/analytics-go"
)

const (
	TraitVersion = "okta-idx-version"

	EventRanCommand = "Ran Command"
	EventSignedIn   = "Signed In"

	PropertyVersion        = "okta-idx-version"
	PropertyKeyringBackend = "backend"
	PropertyCommandName    = "command"
	PropertyProfileName    = "profile"
	PropertySteps          = "steps"
	PropertyAuthenticators = "authenticators"
	PropertyOutcome        = "outcome"
	PropertyDurationMillis = "duration_ms"
)

// Outcome is how an interactive sign-in ended.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeEnded means Okta offered nothing left to do.
	OutcomeEnded Outcome = "ended"
)

// SignIn summarises one sign-in. Steps are remediation names in the order
// they were submitted and Authenticators the kinds the user verified with.
type SignIn struct {
	Profile        string
	Steps          []string
	Authenticators []string
	Outcome        Outcome
	Duration       time.Duration
}

// Client reports okta-idx usage to Segment. A zero value Client does
// nothing.
type Client struct {
	client analytics.Client

	UserId         string
	KeyringBackend string
	Version        string
}

// New creates a Client sending to writeKey. Every message is flushed on
// its own since commands are short lived.
func New(writeKey string) Client {
	cl, _ := analytics.NewWithConfig(writeKey, analytics.Config{
		BatchSize: 1,
	})
	return Client{client: cl}
}

// NewWithClient wraps an existing analytics-go client.
func NewWithClient(cl analytics.Client) Client {
	return Client{client: cl}
}

func (a Client) Identify() {
	if a.client == nil {
		return
	}
	a.client.Enqueue(analytics.Identify{
		UserId: a.UserId,
		Traits: analytics.NewTraits().
			Set(TraitVersion, a.Version),
	})
}

// TrackCommand records one run of command. profile may be empty for
// commands that do not act on a profile.
func (a Client) TrackCommand(command, profile string) {
	props := analytics.NewProperties().
		Set(PropertyCommandName, command)
	if profile != "" {
		props.Set(PropertyProfileName, profile)
	}
	a.track(EventRanCommand, props)
}

func (a Client) TrackSignIn(s SignIn) {
	a.track(EventSignedIn, analytics.NewProperties().
		Set(PropertyProfileName, s.Profile).
		Set(PropertySteps, strings.Join(s.Steps, ",")).
		Set(PropertyAuthenticators, strings.Join(s.Authenticators, ",")).
		Set(PropertyOutcome, string(s.Outcome)).
		Set(PropertyDurationMillis, s.Duration.Milliseconds()))
}

func (a Client) track(event string, props analytics.Properties) {
	if a.client == nil {
		return
	}
	a.client.Enqueue(analytics.Track{
		UserId: a.UserId,
		Event:  event,
		Properties: props.
			Set(PropertyKeyringBackend, a.KeyringBackend).
			Set(PropertyVersion, a.Version),
	})
}

func (a Client) Close() {
	if a.client == nil {
		return
	}
	a.client.Close()
}
