package idx

import "fmt"

const (
	testIssuer      = "https://canada.okta.com/oauth2/default"
	testOrigin      = "https://canada.okta.com"
	testClientID    = "client123"
	testRedirectURI = "com.example:/callback"
)

func oktaInteract(handle string) string {
	return fmt.Sprintf(`{"interaction_handle": "%s"}`, handle)
}

func oktaToken(accessToken string) string {
	return fmt.Sprintf(`{
  "token_type": "Bearer",
  "expires_in": 3600,
  "access_token": "%s",
  "scope": "openid profile offline_access",
  "refresh_token": "refresh-abc",
  "id_token": "id-abc"
}`, accessToken)
}

func oauthError(code, description string) string {
	return fmt.Sprintf(`{"error": "%s", "error_description": "%s"}`, code, description)
}

func stateHandleField(stateHandle string) string {
	return fmt.Sprintf(`{
        "name": "stateHandle",
        "required": true,
        "value": "%s",
        "visible": false,
        "mutable": false
      }`, stateHandle)
}

func cancelRemediation(stateHandle string) string {
	return fmt.Sprintf(`"cancel": {
    "rel": ["create-form"],
    "name": "cancel",
    "href": "https://canada.okta.com/idp/idx/cancel",
    "method": "POST",
    "produces": "application/ion+json; okta-version=1.0.0",
    "value": [%s],
    "accepts": "application/json; okta-version=1.0.0"
  }`, stateHandleField(stateHandle))
}

func idxIdentify(stateHandle string) string {
	return fmt.Sprintf(`{
  "version": "1.0.0",
  "stateHandle": "%[1]s",
  "expiresAt": "2021-05-21T16:41:22.000Z",
  "intent": "LOGIN",
  "remediation": {
    "type": "array",
    "value": [{
      "rel": ["create-form"],
      "name": "identify",
      "href": "https://canada.okta.com/idp/idx/identify",
      "method": "POST",
      "produces": "application/ion+json; okta-version=1.0.0",
      "value": [
        {"name": "identifier", "label": "Username", "required": true},
        {"name": "rememberMe", "type": "boolean", "label": "Remember this device"},
        %[2]s
      ],
      "accepts": "application/json; okta-version=1.0.0"
    }, {
      "rel": ["create-form"],
      "name": "select-enroll-profile",
      "href": "https://canada.okta.com/idp/idx/enroll",
      "method": "POST",
      "value": [%[2]s],
      "accepts": "application/json; okta-version=1.0.0"
    }]
  },
  %[3]s,
  "app": {"type": "object", "value": {"name": "oidc_client", "label": "Example", "id": "0oa1"}}
}`, stateHandle, stateHandleField(stateHandle), cancelRemediation(stateHandle))
}

// idxIdentifyWithPassword offers identifier and password in one step. The
// remediation itself carries no relatesTo.
func idxIdentifyWithPassword(stateHandle string) string {
	return fmt.Sprintf(`{
  "version": "1.0.0",
  "stateHandle": "%[1]s",
  "remediation": {
    "type": "array",
    "value": [{
      "rel": ["create-form"],
      "name": "identify",
      "href": "https://canada.okta.com/idp/idx/identify",
      "method": "POST",
      "value": [
        {"name": "identifier", "label": "Username", "required": true},
        {
          "name": "credentials",
          "type": "object",
          "required": true,
          "form": {"value": [{"name": "passcode", "label": "Password", "secret": true}]}
        },
        %[2]s
      ],
      "accepts": "application/json; okta-version=1.0.0"
    }]
  },
  "currentAuthenticator": {
    "type": "object",
    "value": {
      "type": "password",
      "key": "okta_password",
      "id": "aut-pw",
      "displayName": "Password",
      "methods": [{"type": "password"}],
      "settings": {
        "complexity": {"minLength": 8, "minNumber": 1, "excludeUsername": true, "excludeAttributes": ["firstName"]},
        "age": {"minAgeMinutes": 0, "maxAgeDays": 90}
      }
    }
  },
  %[3]s
}`, stateHandle, stateHandleField(stateHandle), cancelRemediation(stateHandle))
}

func idxChallengePassword(stateHandle string) string {
	return fmt.Sprintf(`{
  "version": "1.0.0",
  "stateHandle": "%[1]s",
  "remediation": {
    "type": "array",
    "value": [{
      "rel": ["create-form"],
      "name": "challenge-authenticator",
      "relatesTo": ["$.currentAuthenticatorEnrollment"],
      "href": "https://canada.okta.com/idp/idx/challenge/answer",
      "method": "POST",
      "value": [
        {
          "name": "credentials",
          "type": "object",
          "required": true,
          "form": {"value": [{"name": "passcode", "label": "Password", "secret": true, "required": true}]}
        },
        %[2]s
      ],
      "accepts": "application/json; okta-version=1.0.0"
    }]
  },
  "currentAuthenticatorEnrollment": {
    "type": "object",
    "value": {
      "type": "password",
      "key": "okta_password",
      "id": "lae-pw",
      "displayName": "Password",
      "methods": [{"type": "password"}],
      "recover": {
        "rel": ["create-form"],
        "name": "recover",
        "href": "https://canada.okta.com/idp/idx/recover",
        "method": "POST",
        "value": [%[2]s],
        "accepts": "application/json; okta-version=1.0.0"
      }
    }
  },
  "authenticatorEnrollments": {
    "type": "array",
    "value": [
      {"type": "password", "key": "okta_password", "id": "lae-pw", "displayName": "Password", "methods": [{"type": "password"}]},
      {"type": "email", "key": "okta_email", "id": "lae-email", "displayName": "Email", "methods": [{"type": "email"}], "profile": {"email": "d***y@example.com"}}
    ]
  },
  "user": {"type": "object", "value": {"id": "00u1"}},
  %[3]s
}`, stateHandle, stateHandleField(stateHandle), cancelRemediation(stateHandle))
}

// idxPasswordRejected is sent with a 400 status.
func idxPasswordRejected(stateHandle string) string {
	return fmt.Sprintf(`{
  "version": "1.0.0",
  "stateHandle": "%[1]s",
  "messages": {
    "type": "array",
    "value": [{"message": "Password is incorrect", "i18n": {"key": "incorrectPassword"}, "class": "ERROR"}]
  },
  "remediation": {
    "type": "array",
    "value": [{
      "rel": ["create-form"],
      "name": "challenge-authenticator",
      "relatesTo": ["$.currentAuthenticatorEnrollment"],
      "href": "https://canada.okta.com/idp/idx/challenge/answer",
      "method": "POST",
      "value": [
        {"name": "credentials", "type": "object", "required": true, "form": {"value": [{"name": "passcode", "required": true}]}},
        %[2]s
      ]
    }]
  },
  "currentAuthenticatorEnrollment": {
    "type": "object",
    "value": {"type": "password", "key": "okta_password", "id": "lae-pw", "displayName": "Password"}
  }
}`, stateHandle, stateHandleField(stateHandle))
}

func idxMessagesOnly(text string) string {
	return fmt.Sprintf(`{
  "version": "1.0.0",
  "messages": {"type": "array", "value": [{"message": "%s", "i18n": {"key": "idx.session.expired"}, "class": "ERROR"}]}
}`, text)
}

func idxSuccess(stateHandle, interactionCode string) string {
	return fmt.Sprintf(`{
  "version": "1.0.0",
  "stateHandle": "%[1]s",
  "user": {"type": "object", "value": {"id": "00u1"}},
  "successWithInteractionCode": {
    "rel": ["create-form"],
    "name": "issue",
    "href": "https://canada.okta.com/oauth2/default/v1/token",
    "method": "POST",
    "value": [
      {"name": "grant_type", "required": true, "value": "interaction_code"},
      {"name": "interaction_code", "required": true, "value": "%[2]s"},
      {"name": "client_id", "required": true, "value": "client123"},
      {"name": "code_verifier", "required": true}
    ],
    "accepts": "application/x-www-form-urlencoded"
  }
}`, stateHandle, interactionCode)
}

func idxSelectAuthenticator(stateHandle string) string {
	return fmt.Sprintf(`{
  "version": "1.0.0",
  "stateHandle": "%[1]s",
  "remediation": {
    "type": "array",
    "value": [{
      "rel": ["create-form"],
      "name": "select-authenticator-authenticate",
      "href": "https://canada.okta.com/idp/idx/challenge",
      "method": "POST",
      "value": [
        {
          "name": "authenticator",
          "type": "object",
          "options": [{
            "label": "Email",
            "value": {"form": {"value": [
              {"name": "id", "required": true, "value": "aut-email", "mutable": false},
              {"name": "methodType", "required": false, "value": "email", "mutable": false}
            ]}},
            "relatesTo": "$.authenticatorEnrollments.value[0]"
          }, {
            "label": "Okta Verify",
            "value": {"form": {"value": [
              {"name": "id", "required": true, "value": "aut-ov", "mutable": false},
              {"name": "methodType", "type": "string", "required": false, "options": [
                {"label": "Get a push notification", "value": "push"},
                {"label": "Enter a code", "value": "totp"}
              ]}
            ]}},
            "relatesTo": "$.authenticatorEnrollments.value[1]"
          }]
        },
        %[2]s
      ],
      "accepts": "application/json; okta-version=1.0.0"
    }]
  },
  "authenticators": {
    "type": "array",
    "value": [
      {"type": "email", "key": "okta_email", "id": "aut-email", "displayName": "Email", "methods": [{"type": "email"}]},
      {"type": "app", "key": "okta_verify", "id": "aut-ov", "displayName": "Okta Verify", "methods": [{"type": "push"}, {"type": "totp"}]}
    ]
  },
  "authenticatorEnrollments": {
    "type": "array",
    "value": [
      {"type": "email", "key": "okta_email", "id": "aut-email", "displayName": "Email", "methods": [{"type": "email"}], "profile": {"email": "d***y@example.com"}},
      {"type": "app", "key": "okta_verify", "id": "aut-ov", "displayName": "Okta Verify", "methods": [{"type": "push"}, {"type": "totp"}]}
    ]
  },
  %[3]s
}`, stateHandle, stateHandleField(stateHandle), cancelRemediation(stateHandle))
}

// idxChallengeEmail polls for a magic link while also offering the code
// entry step.
func idxChallengeEmail(stateHandle string, refreshMillis int) string {
	return fmt.Sprintf(`{
  "version": "1.0.0",
  "stateHandle": "%[1]s",
  "remediation": {
    "type": "array",
    "value": [{
      "rel": ["create-form"],
      "name": "challenge-authenticator",
      "relatesTo": ["$.currentAuthenticatorEnrollment"],
      "href": "https://canada.okta.com/idp/idx/challenge/answer",
      "method": "POST",
      "value": [
        {"name": "credentials", "type": "object", "required": true, "form": {"value": [{"name": "passcode", "label": "Enter code"}]}},
        %[2]s
      ],
      "accepts": "application/json; okta-version=1.0.0"
    }, {
      "rel": ["create-form"],
      "name": "select-authenticator-authenticate",
      "href": "https://canada.okta.com/idp/idx/challenge",
      "method": "POST",
      "value": [%[2]s]
    }]
  },
  "currentAuthenticatorEnrollment": {
    "type": "object",
    "value": {
      "type": "email",
      "key": "okta_email",
      "id": "aut-email",
      "displayName": "Email",
      "methods": [{"type": "email"}],
      "profile": {"email": "d***y@example.com"},
      "resend": {
        "rel": ["create-form"],
        "name": "resend",
        "href": "https://canada.okta.com/idp/idx/challenge/resend",
        "method": "POST",
        "value": [%[2]s],
        "accepts": "application/json; okta-version=1.0.0"
      },
      "poll": {
        "rel": ["create-form"],
        "name": "poll",
        "href": "https://canada.okta.com/idp/idx/challenge/poll",
        "method": "POST",
        "refresh": %[3]d,
        "value": [%[2]s],
        "accepts": "application/json; okta-version=1.0.0"
      }
    }
  },
  %[4]s
}`, stateHandle, stateHandleField(stateHandle), refreshMillis, cancelRemediation(stateHandle))
}

// idxEnrollPoll is an Okta Verify enrollment where the enroll-poll step
// arrives without relatesTo.
func idxEnrollPoll(stateHandle string, refreshMillis int) string {
	return fmt.Sprintf(`{
  "version": "1.0.0",
  "stateHandle": "%[1]s",
  "remediation": {
    "type": "array",
    "value": [{
      "rel": ["create-form"],
      "name": "enroll-poll",
      "href": "https://canada.okta.com/idp/idx/challenge/poll",
      "method": "POST",
      "refresh": %[3]d,
      "value": [%[2]s],
      "accepts": "application/json; okta-version=1.0.0"
    }, {
      "rel": ["create-form"],
      "name": "select-enrollment-channel",
      "href": "https://canada.okta.com/idp/idx/credential/enroll",
      "method": "POST",
      "relatesTo": ["$.currentAuthenticator"],
      "value": [
        {"name": "authenticator", "type": "object", "value": {"form": {"value": [
          {"name": "id", "required": true, "value": "aut-ov", "mutable": false},
          {"name": "channel", "type": "string", "required": false, "options": [
            {"label": "QRCODE", "value": "qrcode"},
            {"label": "EMAIL", "value": "email"},
            {"label": "SMS", "value": "sms"}
          ]}
        ]}}},
        %[2]s
      ]
    }]
  },
  "currentAuthenticator": {
    "type": "object",
    "value": {
      "type": "app",
      "key": "okta_verify",
      "id": "aut-ov",
      "displayName": "Okta Verify",
      "methods": [{"type": "push"}],
      "contextualData": {
        "qrcode": {"method": "embedded", "href": "data:image/png;base64,iVBORw0KGgo", "type": "image/png"},
        "selectedChannel": "qrcode"
      }
    }
  },
  "authenticators": {
    "type": "array",
    "value": [{"type": "app", "key": "okta_verify", "id": "aut-ov", "displayName": "Okta Verify", "methods": [{"type": "push"}]}]
  }
}`, stateHandle, stateHandleField(stateHandle), refreshMillis)
}

// idxDanglingRelation has a field pointing at a path nothing lives at.
func idxDanglingRelation(stateHandle string) string {
	return fmt.Sprintf(`{
  "version": "1.0.0",
  "stateHandle": "%[1]s",
  "remediation": {
    "type": "array",
    "value": [{
      "rel": ["create-form"],
      "name": "challenge-authenticator",
      "href": "https://canada.okta.com/idp/idx/challenge/answer",
      "method": "POST",
      "value": [
        {"name": "credentials", "type": "object", "relatesTo": "$.nonexistent", "form": {"value": [{"name": "passcode"}]}},
        %[2]s
      ]
    }]
  }
}`, stateHandle, stateHandleField(stateHandle))
}

// idxChallengePush is an Okta Verify push where the authenticator carries
// its own poll step and a challenge-poll remediation also relates to it.
func idxChallengePush(stateHandle string, refreshMillis int) string {
	return fmt.Sprintf(`{
  "version": "1.0.0",
  "stateHandle": "%[1]s",
  "remediation": {
    "type": "array",
    "value": [{
      "rel": ["create-form"],
      "name": "challenge-poll",
      "href": "https://canada.okta.com/idp/idx/authenticators/poll",
      "method": "POST",
      "relatesTo": ["$.currentAuthenticator"],
      "refresh": %[3]d,
      "value": [%[2]s],
      "accepts": "application/json; okta-version=1.0.0"
    }]
  },
  "currentAuthenticator": {
    "type": "object",
    "value": {
      "type": "app",
      "key": "okta_verify",
      "id": "aut-ov",
      "displayName": "Okta Verify",
      "methods": [{"type": "push"}],
      "poll": {
        "rel": ["create-form"],
        "name": "poll",
        "href": "https://canada.okta.com/idp/idx/challenge/poll",
        "method": "POST",
        "refresh": %[3]d,
        "value": [%[2]s],
        "accepts": "application/json; okta-version=1.0.0"
      }
    }
  }
}`, stateHandle, stateHandleField(stateHandle), refreshMillis)
}

// idxUnknownSteps offers two steps this package has no type for, one of
// them without an href.
func idxUnknownSteps(stateHandle string) string {
	return fmt.Sprintf(`{
  "version": "1.0.0",
  "stateHandle": "%[1]s",
  "remediation": {
    "type": "array",
    "value": [{
      "rel": ["create-form"],
      "name": "device-assurance-grace-period",
      "method": "POST",
      "value": [%[2]s]
    }, {
      "rel": ["create-form"],
      "name": "device-enrollment-terminal",
      "href": "https://canada.okta.com/idp/idx/device/enroll",
      "method": "POST",
      "value": [%[2]s]
    }]
  }
}`, stateHandle, stateHandleField(stateHandle))
}
