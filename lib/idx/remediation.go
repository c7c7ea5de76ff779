package idx

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// RemediationType is the name Okta gives a remediation step.
type RemediationType string

const (
	RemediationUnknown                         RemediationType = ""
	RemediationIdentify                        RemediationType = "identify"
	RemediationIdentifyRecovery                RemediationType = "identify-recovery"
	RemediationSelectIdentify                  RemediationType = "select-identify"
	RemediationSelectEnrollProfile             RemediationType = "select-enroll-profile"
	RemediationCancel                          RemediationType = "cancel"
	RemediationSendChallenge                   RemediationType = "send-challenge"
	RemediationResendChallenge                 RemediationType = "resend-challenge"
	RemediationSelectAuthenticatorAuthenticate RemediationType = "select-authenticator-authenticate"
	RemediationSelectAuthenticatorEnroll       RemediationType = "select-authenticator-enroll"
	RemediationSelectEnrollmentChannel         RemediationType = "select-enrollment-channel"
	RemediationAuthenticatorVerificationData   RemediationType = "authenticator-verification-data"
	RemediationAuthenticatorEnrollmentData     RemediationType = "authenticator-enrollment-data"
	RemediationEnrollmentChannelData           RemediationType = "enrollment-channel-data"
	RemediationChallengeAuthenticator          RemediationType = "challenge-authenticator"
	RemediationEnrollPoll                      RemediationType = "enroll-poll"
	RemediationChallengePoll                   RemediationType = "challenge-poll"
	RemediationEnrollAuthenticator             RemediationType = "enroll-authenticator"
	RemediationReenrollAuthenticator           RemediationType = "reenroll-authenticator"
	RemediationReenrollAuthenticatorWarning    RemediationType = "reenroll-authenticator-warning"
	RemediationResetAuthenticator              RemediationType = "reset-authenticator"
	RemediationEnrollProfile                   RemediationType = "enroll-profile"
	RemediationProfileAttributes               RemediationType = "profile-attributes"
	RemediationSelectIdp                       RemediationType = "select-idp"
	RemediationSelectPlatform                  RemediationType = "select-platform"
	RemediationFactorPollVerification          RemediationType = "factor-poll-verification"
	RemediationQRRefresh                       RemediationType = "qr-refresh"
	RemediationDeviceChallengePoll             RemediationType = "device-challenge-poll"
	RemediationCancelPolling                   RemediationType = "cancel-polling"
	RemediationLaunchAuthenticator             RemediationType = "launch-authenticator"
	RemediationRedirect                        RemediationType = "redirect"
	RemediationRedirectIdp                     RemediationType = "redirect-idp"
	RemediationCancelTransaction               RemediationType = "cancel-transaction"
	RemediationSkip                            RemediationType = "skip"
	RemediationConsent                         RemediationType = "consent"
	RemediationAdminConsent                    RemediationType = "admin-consent"
	RemediationEmailChallengeConsent           RemediationType = "email-challenge-consent"
	RemediationRequestActivationEmail          RemediationType = "request-activation-email"
	RemediationUserCode                        RemediationType = "user-code"
	RemediationUnlockAccount                   RemediationType = "unlock-account"
	RemediationPoll                            RemediationType = "poll"
	RemediationSend                            RemediationType = "send"
	RemediationResend                          RemediationType = "resend"
	RemediationRecover                         RemediationType = "recover"
	RemediationSuccessWithInteractionCode      RemediationType = "issue"
)

var knownRemediationTypes = map[RemediationType]struct{}{}

func init() {
	for _, t := range []RemediationType{
		RemediationIdentify, RemediationIdentifyRecovery, RemediationSelectIdentify,
		RemediationSelectEnrollProfile, RemediationCancel, RemediationSendChallenge,
		RemediationResendChallenge, RemediationSelectAuthenticatorAuthenticate,
		RemediationSelectAuthenticatorEnroll, RemediationSelectEnrollmentChannel,
		RemediationAuthenticatorVerificationData, RemediationAuthenticatorEnrollmentData,
		RemediationEnrollmentChannelData, RemediationChallengeAuthenticator,
		RemediationEnrollPoll, RemediationChallengePoll, RemediationEnrollAuthenticator,
		RemediationReenrollAuthenticator, RemediationReenrollAuthenticatorWarning,
		RemediationResetAuthenticator, RemediationEnrollProfile, RemediationProfileAttributes,
		RemediationSelectIdp, RemediationSelectPlatform, RemediationFactorPollVerification,
		RemediationQRRefresh, RemediationDeviceChallengePoll, RemediationCancelPolling,
		RemediationLaunchAuthenticator, RemediationRedirect, RemediationRedirectIdp,
		RemediationCancelTransaction, RemediationSkip, RemediationConsent,
		RemediationAdminConsent, RemediationEmailChallengeConsent,
		RemediationRequestActivationEmail, RemediationUserCode, RemediationUnlockAccount,
		RemediationPoll, RemediationSend, RemediationResend, RemediationRecover,
		RemediationSuccessWithInteractionCode,
	} {
		knownRemediationTypes[t] = struct{}{}
	}
}

func remediationType(name string) RemediationType {
	if _, ok := knownRemediationTypes[RemediationType(name)]; ok {
		return RemediationType(name)
	}
	return RemediationUnknown
}

// IsPoll reports whether remediations of this type re-check an
// out-of-band factor.
func (t RemediationType) IsPoll() bool {
	switch t {
	case RemediationPoll, RemediationEnrollPoll, RemediationChallengePoll,
		RemediationDeviceChallengePoll, RemediationFactorPollVerification:
		return true
	}
	return false
}

const defaultPollInterval = 5 * time.Second

// Remediation is one step the server offers. Proceed submits it; the
// Remediation itself is never modified.
type Remediation struct {
	Type    RemediationType
	Name    string
	Href    string
	Method  string
	Accepts string
	Rel     []string
	Form    *Form
	// Refresh is the poll interval the server asked for, or 0.
	Refresh time.Duration

	relatesTo      []string
	authenticators []*Authenticator
	poll           *PollingCapability

	flow  *Flow
	epoch uint64
}

func newRemediation(raw rawRemediation, f *Flow, epoch uint64) *Remediation {
	r := &Remediation{
		Type:      remediationType(raw.Name),
		Name:      raw.Name,
		Href:      raw.Href,
		Method:    raw.Method,
		Accepts:   raw.Accepts,
		Rel:       raw.Rel,
		Form:      newForm(raw.Value),
		relatesTo: raw.RelatesTo,
		flow:      f,
		epoch:     epoch,
	}
	if r.Method == "" {
		r.Method = "POST"
	}
	if raw.Refresh != nil {
		r.Refresh = time.Duration(*raw.Refresh) * time.Millisecond
	}
	return r
}

// Field is shorthand for r.Form.Field(name).
func (r *Remediation) Field(name string) *Field {
	return r.Form.Field(name)
}

// RelatesTo returns the raw relatesTo paths as the server sent them.
func (r *Remediation) RelatesTo() []string {
	out := make([]string, len(r.relatesTo))
	copy(out, r.relatesTo)
	return out
}

// Authenticators returns the authenticators linked to this step.
func (r *Remediation) Authenticators() []*Authenticator {
	out := make([]*Authenticator, len(r.authenticators))
	copy(out, r.authenticators)
	return out
}

// Authenticator returns the first linked authenticator, or nil.
func (r *Remediation) Authenticator() *Authenticator {
	if len(r.authenticators) == 0 {
		return nil
	}
	return r.authenticators[0]
}

// Pollable returns the polling capability for this step when it is a poll
// step linked to an authenticator. Its Remediation is always r, even when
// the authenticator carries a poll step of its own; Authenticator.Pollable
// returns that one.
func (r *Remediation) Pollable() *PollingCapability {
	if !r.Type.IsPoll() {
		return nil
	}
	return r.poll
}

// FormValues validates params and resolves the request body this
// remediation would submit. It has no side effects.
func (r *Remediation) FormValues(params *Parameters) (Value, error) {
	if err := params.validate(r.Form); err != nil {
		return Null(), err
	}
	obj, err := r.Form.resolve(params)
	if err != nil {
		return Null(), err
	}
	return Value{kind: ObjectKind, obj: obj}, nil
}

// Proceed submits this remediation with params and returns the next
// Response. Validation failures are returned before any network call.
func (r *Remediation) Proceed(ctx context.Context, params *Parameters) (*Response, error) {
	if r.flow == nil {
		return nil, ErrInvalidFlow
	}
	lctx := r.flow.logger().WithFields(log.Fields{
		"remediation": r.Name,
		"href":        r.Href,
	})
	if r.Type == RemediationUnknown && r.Href == "" {
		lctx.Debug("unknown remediation has nowhere to go")
		r.flow.observe(r.epoch, nil, ErrUnknownRemediationOption)
		return nil, ErrUnknownRemediationOption
	}

	body, err := r.FormValues(params)
	if err != nil {
		lctx.Debugf("rejected parameters: %s", err)
		r.flow.observe(r.epoch, nil, err)
		return nil, err
	}
	if !r.flow.isCurrent(r.epoch) {
		r.flow.observe(r.epoch, nil, ErrInvalidFlow)
		return nil, ErrInvalidFlow
	}

	for _, a := range r.authenticators {
		a.willProceed(r)
	}
	if !r.Type.IsPoll() {
		r.flow.stopPolls()
	}

	lctx.Debug("proceeding")
	resp, err := r.flow.submit(ctx, r.epoch, r.Method, r.Href, r.Accepts, body)
	r.flow.observe(r.epoch, resp, err)
	return resp, err
}
