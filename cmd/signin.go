package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/segmentio/okta-idx/cmd/internal/analytics"
	"github.com/segmentio/okta-idx/lib/idx"
)

var ErrSignInEnded = errors.New("Okta ended the sign-in without issuing a code")

// signIn walks a Flow from Start to a Token, asking the user for every form
// the server sends back.
type signIn struct {
	flow *idx.Flow
	p    prompter

	steps          []string
	authenticators []string
}

func (s *signIn) run(ctx context.Context) (*idx.Token, error) {
	resp, err := s.flow.Start(ctx)
	if err != nil {
		return nil, err
	}

	for {
		if resp.IsLoginSuccessful() {
			return s.flow.ExchangeCode(ctx, resp)
		}
		s.sayMessages(resp.Messages.All())

		rem, err := s.choose(resp)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"remediation": rem.Name,
			"state":       s.flow.State(),
		}).Debug("proceeding")
		s.record(rem)

		if rem.Type == idx.RemediationRedirectIdp {
			return s.redirect(ctx, rem)
		}
		if resp, err = s.proceed(ctx, rem); err != nil {
			return nil, err
		}
	}
}

// record notes a submitted step and the authenticators it verifies.
func (s *signIn) record(rem *idx.Remediation) {
	s.steps = append(s.steps, rem.Name)
	for _, a := range rem.Authenticators() {
		kind := string(a.Kind)
		seen := false
		for _, k := range s.authenticators {
			if k == kind {
				seen = true
				break
			}
		}
		if !seen {
			s.authenticators = append(s.authenticators, kind)
		}
	}
}

// report summarises the sign-in for analytics once run returned err.
func (s *signIn) report(profile string, err error, took time.Duration) analytics.SignIn {
	outcome := analytics.OutcomeSucceeded
	switch {
	case err == nil:
	case errors.Is(err, ErrSignInEnded):
		outcome = analytics.OutcomeEnded
	case errors.Is(err, context.Canceled), errors.Is(err, idx.ErrPollCancelled):
		outcome = analytics.OutcomeCancelled
	default:
		outcome = analytics.OutcomeFailed
	}
	return analytics.SignIn{
		Profile:        profile,
		Steps:          s.steps,
		Authenticators: s.authenticators,
		Outcome:        outcome,
		Duration:       took,
	}
}

func (s *signIn) choose(resp *idx.Response) (*idx.Remediation, error) {
	var candidates []*idx.Remediation
	for _, rem := range resp.Remediations.All() {
		if rem.Type == idx.RemediationCancel || rem.Type == idx.RemediationUnknown {
			continue
		}
		candidates = append(candidates, rem)
	}

	switch len(candidates) {
	case 0:
		return nil, ErrSignInEnded
	case 1:
		return candidates[0], nil
	}

	labels := make([]string, len(candidates))
	for i, rem := range candidates {
		labels[i] = remediationLabel(rem)
	}
	i, err := s.p.Select("What would you like to do", labels)
	if err != nil {
		return nil, err
	}
	return candidates[i], nil
}

func (s *signIn) proceed(ctx context.Context, rem *idx.Remediation) (*idx.Response, error) {
	if poll := rem.Pollable(); poll != nil {
		if a := rem.Authenticator(); a != nil {
			if nc := a.NumberChallenge(); nc != nil {
				s.p.Say("Tap %s in %s", nc.CorrectAnswer, a.DisplayName)
			}
			s.p.Say("Waiting for %s...", a.DisplayName)
		}
		return poll.Proceed(ctx)
	}

	params := idx.NewParameters()
	if rem.Form != nil {
		if err := s.fill(rem.Form.Fields(), params); err != nil {
			return nil, err
		}
	}
	return s.flow.Resume(ctx, rem, params)
}

func (s *signIn) redirect(ctx context.Context, rem *idx.Remediation) (*idx.Token, error) {
	s.p.Say("Opening %s", rem.Href)
	if err := s.p.Open(rem.Href); err != nil {
		log.Debugf("could not open a browser: %s", err)
	}
	redirectURL, err := s.p.Prompt("Paste the URL your browser was sent to", false)
	if err != nil {
		return nil, err
	}
	return s.flow.ExchangeRedirect(ctx, redirectURL)
}

func (s *signIn) fill(fields []*idx.Field, params *idx.Parameters) error {
	for _, f := range fields {
		if !f.Visible || !f.Mutable {
			continue
		}
		s.sayMessages(f.Messages)

		switch {
		case len(f.Options) > 0:
			option := f.Options[0]
			if len(f.Options) > 1 {
				labels := make([]string, len(f.Options))
				for i, o := range f.Options {
					labels[i] = fieldLabel(o)
				}
				i, err := s.p.Select(fieldLabel(f), labels)
				if err != nil {
					return err
				}
				option = f.Options[i]
			}
			params.Select(f, option)
			if option.Form != nil {
				if err := s.fill(option.Form.Fields(), params); err != nil {
					return err
				}
			}

		case f.Form != nil:
			if err := s.fill(f.Form.Fields(), params); err != nil {
				return err
			}

		case f.Type == "boolean":
			answer, err := s.p.Prompt(fieldLabel(f)+" (y/n)", false)
			if err != nil {
				return err
			}
			params.SetBool(f, strings.HasPrefix(strings.ToLower(answer), "y"))

		default:
			answer, err := s.p.Prompt(fieldLabel(f), f.Secret)
			if err != nil {
				return err
			}
			if answer == "" && !f.Required {
				continue
			}
			params.SetString(f, answer)
		}
	}
	return nil
}

func (s *signIn) sayMessages(msgs []idx.Message) {
	for _, m := range msgs {
		s.p.Say("%s", m.Text)
	}
}

func fieldLabel(f *idx.Field) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func remediationLabel(rem *idx.Remediation) string {
	a := rem.Authenticator()
	switch {
	case rem.Type == idx.RemediationIdentify:
		return "Sign in"
	case rem.Type == idx.RemediationSelectEnrollProfile:
		return "Sign up"
	case rem.Type == idx.RemediationRedirectIdp:
		return fmt.Sprintf("Sign in with %s", rem.Href)
	case rem.Type.IsPoll() && a != nil:
		return fmt.Sprintf("Wait for %s", a.DisplayName)
	case a != nil:
		return fmt.Sprintf("%s (%s)", rem.Name, a.DisplayName)
	}
	return rem.Name
}
