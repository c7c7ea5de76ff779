package idx

import (
	"encoding/json"
)

// Wire shapes of an IDX response. Everything here is unexported; the public
// model is built from these by decodeResponse.

type rawResponse struct {
	StateHandle                    string           `json:"stateHandle"`
	Version                        string           `json:"version"`
	ExpiresAt                      string           `json:"expiresAt"`
	Intent                         string           `json:"intent"`
	InteractionHandle              string           `json:"interactionHandle"`
	Remediation                    *rawRemediations `json:"remediation"`
	Messages                       *rawMessages     `json:"messages"`
	CurrentAuthenticator           *rawAuthObject   `json:"currentAuthenticator"`
	CurrentAuthenticatorEnrollment *rawAuthObject   `json:"currentAuthenticatorEnrollment"`
	RecoveryAuthenticator          *rawAuthObject   `json:"recoveryAuthenticator"`
	Authenticators                 *rawAuthList     `json:"authenticators"`
	AuthenticatorEnrollments       *rawAuthList     `json:"authenticatorEnrollments"`
	User                           *rawObject       `json:"user"`
	App                            *rawObject       `json:"app"`
	Cancel                         *rawRemediation  `json:"cancel"`
	SuccessWithInteractionCode     *rawRemediation  `json:"successWithInteractionCode"`
}

type rawRemediations struct {
	Type  string           `json:"type"`
	Value []rawRemediation `json:"value"`
}

type rawRemediation struct {
	Rel       []string   `json:"rel"`
	Name      string     `json:"name"`
	Href      string     `json:"href"`
	Method    string     `json:"method"`
	Accepts   string     `json:"accepts"`
	Produces  string     `json:"produces"`
	Refresh   *float64   `json:"refresh"`
	RelatesTo []string   `json:"relatesTo"`
	Value     []rawField `json:"value"`
}

type rawForm struct {
	Value []rawField `json:"value"`
}

type rawField struct {
	Name      string       `json:"name"`
	Label     string       `json:"label"`
	Type      string       `json:"type"`
	Required  *bool        `json:"required"`
	Mutable   *bool        `json:"mutable"`
	Visible   *bool        `json:"visible"`
	Secret    bool         `json:"secret"`
	Form      *rawForm     `json:"form"`
	Options   []rawField   `json:"options"`
	Messages  *rawMessages `json:"messages"`
	RelatesTo string       `json:"relatesTo"`

	// value is either a plain JSON default or, for options, an object
	// wrapping a nested form.
	Value     Value    `json:"-"`
	ValueForm *rawForm `json:"-"`
}

func (f *rawField) UnmarshalJSON(data []byte) error {
	type plain rawField
	aux := struct {
		*plain
		Value json.RawMessage `json:"value"`
	}{plain: (*plain)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Value) == 0 {
		return nil
	}

	var wrapped struct {
		Form *rawForm `json:"form"`
	}
	if aux.Value[0] == '{' {
		if err := json.Unmarshal(aux.Value, &wrapped); err == nil && wrapped.Form != nil {
			f.ValueForm = wrapped.Form
			return nil
		}
	}
	return json.Unmarshal(aux.Value, &f.Value)
}

type rawMessages struct {
	Type  string       `json:"type"`
	Value []rawMessage `json:"value"`
}

type rawMessage struct {
	Message string `json:"message"`
	Class   string `json:"class"`
	I18n    *struct {
		Key string `json:"key"`
	} `json:"i18n"`
}

type rawAuthObject struct {
	Type  string           `json:"type"`
	Value rawAuthenticator `json:"value"`
}

type rawAuthList struct {
	Type  string             `json:"type"`
	Value []rawAuthenticator `json:"value"`
}

type rawAuthenticator struct {
	ID             string            `json:"id"`
	DisplayName    string            `json:"displayName"`
	Type           string            `json:"type"`
	Key            string            `json:"key"`
	Methods        []rawMethod       `json:"methods"`
	Settings       Value             `json:"settings"`
	ContextualData Value             `json:"contextualData"`
	Profile        map[string]string `json:"profile"`
	Send           *rawRemediation   `json:"send"`
	Resend         *rawRemediation   `json:"resend"`
	Recover        *rawRemediation   `json:"recover"`
	Poll           *rawRemediation   `json:"poll"`
}

type rawMethod struct {
	Type string `json:"type"`
}

type rawObject struct {
	Type  string `json:"type"`
	Value Value  `json:"value"`
}
