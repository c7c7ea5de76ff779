package idx

type AuthenticatorKind string

const (
	AuthenticatorPassword         AuthenticatorKind = "password"
	AuthenticatorEmail            AuthenticatorKind = "email"
	AuthenticatorPhone            AuthenticatorKind = "phone"
	AuthenticatorSecurityQuestion AuthenticatorKind = "security_question"
	AuthenticatorApp              AuthenticatorKind = "app"
	AuthenticatorSecurityKey      AuthenticatorKind = "security_key"
	AuthenticatorDevice           AuthenticatorKind = "device"
	AuthenticatorFederated        AuthenticatorKind = "federated"
	AuthenticatorOther            AuthenticatorKind = "other"
)

func authenticatorKind(t string) AuthenticatorKind {
	switch k := AuthenticatorKind(t); k {
	case AuthenticatorPassword, AuthenticatorEmail, AuthenticatorPhone,
		AuthenticatorSecurityQuestion, AuthenticatorApp, AuthenticatorSecurityKey,
		AuthenticatorDevice, AuthenticatorFederated:
		return k
	}
	return AuthenticatorOther
}

// AuthenticatorState says why an authenticator appears in a response.
type AuthenticatorState int

const (
	AuthenticatorNormal AuthenticatorState = iota
	AuthenticatorEnrolled
	AuthenticatorEnrolling
	AuthenticatorAuthenticating
	AuthenticatorRecovery
)

func (s AuthenticatorState) String() string {
	switch s {
	case AuthenticatorNormal:
		return "normal"
	case AuthenticatorEnrolled:
		return "enrolled"
	case AuthenticatorEnrolling:
		return "enrolling"
	case AuthenticatorAuthenticating:
		return "authenticating"
	case AuthenticatorRecovery:
		return "recovery"
	}
	return "unknown"
}

// Authenticator is a factor descriptor. The same factor may be listed at
// several places in a response; those are merged into one Authenticator
// that answers to every path it was found at.
type Authenticator struct {
	ID          string
	Key         string
	Kind        AuthenticatorKind
	Type        string
	DisplayName string
	State       AuthenticatorState
	Methods     []string

	Settings       Value
	ContextualData Value

	paths []string

	send             *SendCapability
	resend           *ResendCapability
	recover          *RecoverCapability
	poll             *PollingCapability
	profile          *ProfileCapability
	passwordSettings *PasswordSettingsCapability
	numberChallenge  *NumberChallengeCapability
	otp              *OTPCapability
}

// JSONPaths lists the paths (e.g. "$.currentAuthenticator") this
// authenticator was decoded from.
func (a *Authenticator) JSONPaths() []string {
	out := make([]string, len(a.paths))
	copy(out, a.paths)
	return out
}

func (a *Authenticator) Send() *SendCapability                         { return a.send }
func (a *Authenticator) Resend() *ResendCapability                     { return a.resend }
func (a *Authenticator) Recover() *RecoverCapability                   { return a.recover }
func (a *Authenticator) Pollable() *PollingCapability                  { return a.poll }
func (a *Authenticator) Profile() *ProfileCapability                   { return a.profile }
func (a *Authenticator) PasswordSettings() *PasswordSettingsCapability { return a.passwordSettings }
func (a *Authenticator) NumberChallenge() *NumberChallengeCapability   { return a.numberChallenge }
func (a *Authenticator) OTP() *OTPCapability                           { return a.otp }

// willProceed tells every capability that remediation is about to be
// submitted.
func (a *Authenticator) willProceed(r *Remediation) {
	if a.poll != nil {
		a.poll.willProceed(r)
	}
}

// Authenticators is the set of authenticators in one response.
type Authenticators struct {
	all     []*Authenticator
	current *Authenticator
}

func (c *Authenticators) All() []*Authenticator {
	if c == nil {
		return nil
	}
	out := make([]*Authenticator, len(c.all))
	copy(out, c.all)
	return out
}

func (c *Authenticators) Len() int {
	if c == nil {
		return 0
	}
	return len(c.all)
}

// Current is the authenticator being enrolled or verified right now.
func (c *Authenticators) Current() *Authenticator {
	if c == nil {
		return nil
	}
	return c.current
}

func (c *Authenticators) Enrolled() []*Authenticator {
	if c == nil {
		return nil
	}
	var out []*Authenticator
	for _, a := range c.all {
		if a.State == AuthenticatorEnrolled {
			out = append(out, a)
		}
	}
	return out
}

func (c *Authenticators) ByKind(kind AuthenticatorKind) *Authenticator {
	if c == nil {
		return nil
	}
	if c.current != nil && c.current.Kind == kind {
		return c.current
	}
	for _, a := range c.all {
		if a.Kind == kind {
			return a
		}
	}
	return nil
}

func (c *Authenticators) ByID(id string) *Authenticator {
	if c == nil {
		return nil
	}
	for _, a := range c.all {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// authenticatorBuilder merges every listing of an authenticator in a raw
// response into a single object.
type authenticatorBuilder struct {
	flow   *Flow
	epoch  uint64
	byKey  map[string]*Authenticator
	result *Authenticators
}

func newAuthenticatorBuilder(f *Flow, epoch uint64) *authenticatorBuilder {
	return &authenticatorBuilder{
		flow:   f,
		epoch:  epoch,
		byKey:  map[string]*Authenticator{},
		result: &Authenticators{},
	}
}

func (b *authenticatorBuilder) add(raw rawAuthenticator, path string, state AuthenticatorState) *Authenticator {
	key := raw.Type + "/" + raw.ID
	a, ok := b.byKey[key]
	if !ok || raw.ID == "" {
		a = &Authenticator{
			ID:          raw.ID,
			Key:         raw.Key,
			Kind:        authenticatorKind(raw.Type),
			Type:        raw.Type,
			DisplayName: raw.DisplayName,
			State:       state,
		}
		b.byKey[key] = a
		b.result.all = append(b.result.all, a)
	}
	a.paths = appendUnique(a.paths, path)
	if state > a.State {
		a.State = state
	}
	if a.DisplayName == "" {
		a.DisplayName = raw.DisplayName
	}
	if a.Key == "" {
		a.Key = raw.Key
	}
	for _, m := range raw.Methods {
		a.Methods = appendUnique(a.Methods, m.Type)
	}
	if a.Settings.IsNull() {
		a.Settings = raw.Settings
	}
	if a.ContextualData.IsNull() {
		a.ContextualData = raw.ContextualData
	}
	b.attachCapabilities(a, raw)
	return a
}

func (b *authenticatorBuilder) attachCapabilities(a *Authenticator, raw rawAuthenticator) {
	if raw.Send != nil && a.send == nil {
		a.send = &SendCapability{remediation: newRemediation(*raw.Send, b.flow, b.epoch)}
	}
	if raw.Resend != nil && a.resend == nil {
		a.resend = &ResendCapability{remediation: newRemediation(*raw.Resend, b.flow, b.epoch)}
	}
	if raw.Recover != nil && a.recover == nil {
		a.recover = &RecoverCapability{remediation: newRemediation(*raw.Recover, b.flow, b.epoch)}
	}
	if raw.Poll != nil && a.poll == nil {
		a.poll = newPollingCapability(a, newRemediation(*raw.Poll, b.flow, b.epoch), nil, b.flow)
	}
	if len(raw.Profile) > 0 && a.profile == nil {
		a.profile = &ProfileCapability{values: raw.Profile}
	}
	if a.passwordSettings == nil {
		a.passwordSettings = newPasswordSettings(a.Kind, raw.Settings)
	}
	if a.numberChallenge == nil {
		a.numberChallenge = newNumberChallenge(raw.ContextualData)
	}
	if a.otp == nil {
		a.otp = newOTP(raw.ContextualData)
	}
}

func (b *authenticatorBuilder) build(raw *rawResponse) *Authenticators {
	if raw.Authenticators != nil {
		for i, r := range raw.Authenticators.Value {
			b.add(r, indexedPath("$.authenticators.value", i), AuthenticatorNormal)
		}
	}
	if raw.AuthenticatorEnrollments != nil {
		for i, r := range raw.AuthenticatorEnrollments.Value {
			b.add(r, indexedPath("$.authenticatorEnrollments.value", i), AuthenticatorEnrolled)
		}
	}
	if raw.CurrentAuthenticator != nil {
		b.result.current = b.add(raw.CurrentAuthenticator.Value, "$.currentAuthenticator", AuthenticatorEnrolling)
	}
	if raw.CurrentAuthenticatorEnrollment != nil {
		b.result.current = b.add(raw.CurrentAuthenticatorEnrollment.Value, "$.currentAuthenticatorEnrollment", AuthenticatorAuthenticating)
	}
	if raw.RecoveryAuthenticator != nil {
		b.add(raw.RecoveryAuthenticator.Value, "$.recoveryAuthenticator", AuthenticatorRecovery)
	}
	return b.result
}

func appendUnique(list []string, s string) []string {
	for _, e := range list {
		if e == s {
			return list
		}
	}
	return append(list, s)
}
