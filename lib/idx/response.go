package idx

import (
	"context"
	"time"
)

// Response is one server state in the IDX conversation. Each successful
// Proceed produces a new Response; earlier ones should not be reused.
type Response struct {
	StateHandle  string
	Intent       string
	ExpiresAt    time.Time
	Remediations *Remediations

	Authenticators *Authenticators
	Messages       *Messages
	User           Value
	App            Value

	cancel  *Remediation
	success *Remediation

	flow  *Flow
	epoch uint64
}

// IsLoginSuccessful reports whether the server issued an interaction code.
func (r *Response) IsLoginSuccessful() bool {
	return r.success != nil
}

func (r *Response) CanCancel() bool {
	return r.cancel != nil
}

// IsTerminal is true when nothing more can be done in this response other
// than exchanging the code.
func (r *Response) IsTerminal() bool {
	if r.IsLoginSuccessful() {
		return true
	}
	for _, rem := range r.Remediations.All() {
		if rem.Type != RemediationCancel && rem.Href != "" {
			return false
		}
	}
	return true
}

// SuccessRemediation returns the successWithInteractionCode step, or nil.
func (r *Response) SuccessRemediation() *Remediation {
	return r.success
}

// CancelRemediation returns the top level cancel step, or nil.
func (r *Response) CancelRemediation() *Remediation {
	return r.cancel
}

// offers reports whether rem is one of the steps of r.
func (r *Response) offers(rem *Remediation) bool {
	if r == nil || rem == nil {
		return false
	}
	if rem == r.cancel || rem == r.success {
		return true
	}
	for _, o := range r.Remediations.All() {
		if o == rem {
			return true
		}
	}
	return false
}

// interactionCode is the default value of the success form's
// interaction_code field.
func (r *Response) interactionCode() string {
	if r.success == nil {
		return ""
	}
	f := r.success.Field("interaction_code")
	if f == nil {
		return ""
	}
	s, _ := f.Value.StringValue()
	return s
}

// Cancel abandons the transaction on the server and resets the Flow.
func (r *Response) Cancel(ctx context.Context) error {
	if r.flow == nil {
		return ErrInvalidFlow
	}
	return r.flow.cancel(ctx, r)
}

// ExchangeCode trades the interaction code in r for a Token.
func (r *Response) ExchangeCode(ctx context.Context) (*Token, error) {
	if r.flow == nil {
		return nil, ErrInvalidFlow
	}
	return r.flow.ExchangeCode(ctx, r)
}
