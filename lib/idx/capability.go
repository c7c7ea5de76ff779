package idx

import (
	"context"
)

// SendCapability asks Okta to deliver a code (email, SMS) for the
// authenticator.
type SendCapability struct {
	remediation *Remediation
}

func (c *SendCapability) Remediation() *Remediation { return c.remediation }

func (c *SendCapability) Send(ctx context.Context) (*Response, error) {
	return c.remediation.Proceed(ctx, nil)
}

// ResendCapability asks Okta to deliver the code again.
type ResendCapability struct {
	remediation *Remediation
}

func (c *ResendCapability) Remediation() *Remediation { return c.remediation }

func (c *ResendCapability) Resend(ctx context.Context) (*Response, error) {
	return c.remediation.Proceed(ctx, nil)
}

// RecoverCapability starts account recovery for a password authenticator.
type RecoverCapability struct {
	remediation *Remediation
}

func (c *RecoverCapability) Remediation() *Remediation { return c.remediation }

func (c *RecoverCapability) Recover(ctx context.Context) (*Response, error) {
	return c.remediation.Proceed(ctx, nil)
}

// ProfileCapability exposes display data such as a masked email address.
type ProfileCapability struct {
	values map[string]string
}

func (c *ProfileCapability) Get(key string) string {
	return c.values[key]
}

func (c *ProfileCapability) Values() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// PasswordSettingsCapability describes password complexity rules.
type PasswordSettingsCapability struct {
	MinLength         int
	MinLowerCase      int
	MinUpperCase      int
	MinNumber         int
	MinSymbol         int
	ExcludeUsername   bool
	ExcludeAttributes []string
	MaxAgeDays        int
	MinAgeMinutes     int
}

func newPasswordSettings(kind AuthenticatorKind, settings Value) *PasswordSettingsCapability {
	if kind != AuthenticatorPassword || settings.IsNull() {
		return nil
	}
	complexity := settings.Get("complexity")
	age := settings.Get("age")
	c := &PasswordSettingsCapability{
		MinLength:     intOf(complexity.Get("minLength")),
		MinLowerCase:  intOf(complexity.Get("minLowerCase")),
		MinUpperCase:  intOf(complexity.Get("minUpperCase")),
		MinNumber:     intOf(complexity.Get("minNumber")),
		MinSymbol:     intOf(complexity.Get("minSymbol")),
		MaxAgeDays:    intOf(age.Get("maxAgeDays")),
		MinAgeMinutes: intOf(age.Get("minAgeMinutes")),
	}
	c.ExcludeUsername, _ = complexity.Get("excludeUsername").BoolValue()
	if attrs, ok := complexity.Get("excludeAttributes").ArrayValue(); ok {
		for _, a := range attrs {
			if s, ok := a.StringValue(); ok {
				c.ExcludeAttributes = append(c.ExcludeAttributes, s)
			}
		}
	}
	return c
}

// NumberChallengeCapability carries the number the user must pick in Okta
// Verify.
type NumberChallengeCapability struct {
	CorrectAnswer string
}

func newNumberChallenge(contextual Value) *NumberChallengeCapability {
	answer := contextual.Get("correctAnswer")
	if answer.IsNull() {
		return nil
	}
	return &NumberChallengeCapability{CorrectAnswer: answer.String()}
}

// OTPCapability carries enrollment data for TOTP style authenticators.
type OTPCapability struct {
	QRCodeHref     string
	QRCodeMimeType string
	SharedSecret   string
}

func newOTP(contextual Value) *OTPCapability {
	qr := contextual.Get("qrcode")
	secret, hasSecret := contextual.Get("sharedSecret").StringValue()
	if qr.IsNull() && !hasSecret {
		return nil
	}
	c := &OTPCapability{SharedSecret: secret}
	c.QRCodeHref, _ = qr.Get("href").StringValue()
	c.QRCodeMimeType, _ = qr.Get("type").StringValue()
	return c
}

func intOf(v Value) int {
	n, ok := v.NumberValue()
	if !ok {
		return 0
	}
	return int(n)
}
