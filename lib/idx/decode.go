package idx

import (
	"encoding/json"
	"fmt"
	"time"
)

// decodeResponse builds a linked Response from an IDX body.
func (f *Flow) decodeResponse(body []byte, epoch uint64) (*Response, error) {
	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding idx response: %w", err)
	}
	return f.buildResponse(&raw, epoch)
}

func (f *Flow) buildResponse(raw *rawResponse, epoch uint64) (*Response, error) {
	resp := &Response{
		StateHandle:    raw.StateHandle,
		Intent:         raw.Intent,
		Remediations:   &Remediations{},
		Authenticators: newAuthenticatorBuilder(f, epoch).build(raw),
		Messages:       &Messages{all: newMessages(raw.Messages)},
		flow:           f,
		epoch:          epoch,
	}
	if raw.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, raw.ExpiresAt)
		if err != nil {
			f.logger().Debugf("ignoring malformed expiresAt %q", raw.ExpiresAt)
		} else {
			resp.ExpiresAt = t
		}
	}
	if raw.User != nil {
		resp.User = raw.User.Value
	}
	if raw.App != nil {
		resp.App = raw.App.Value
	}

	if raw.Remediation != nil {
		for _, r := range raw.Remediation.Value {
			resp.Remediations.all = append(resp.Remediations.all, newRemediation(r, f, epoch))
		}
	}
	if raw.Cancel != nil {
		resp.cancel = newRemediation(*raw.Cancel, f, epoch)
	}
	if raw.SuccessWithInteractionCode != nil {
		resp.success = newRemediation(*raw.SuccessWithInteractionCode, f, epoch)
	}

	linked := resp.Remediations.all
	if resp.cancel != nil {
		linked = append(linked[:len(linked):len(linked)], resp.cancel)
	}
	resolver := &relationResolver{strict: f.strict(), log: f.logger()}
	if err := resolver.resolve(linked, resp.Authenticators); err != nil {
		return nil, err
	}
	return resp, nil
}
