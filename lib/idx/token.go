package idx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/segmentio/okta-idx/lib/idx/types"
)

var ErrNoIDToken = errors.New("token has no id_token")

// Token is the result of a successful code exchange.
type Token struct {
	TokenType    string    `json:"token_type"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

func newToken(raw types.TokenResponse, now time.Time) *Token {
	return &Token{
		TokenType:    raw.TokenType,
		AccessToken:  raw.AccessToken,
		RefreshToken: raw.RefreshToken,
		IDToken:      raw.IDToken,
		Scope:        raw.Scope,
		ExpiresIn:    raw.ExpiresIn,
		IssuedAt:     now,
	}
}

func (t *Token) Expiry() time.Time {
	if t.ExpiresIn == 0 {
		return time.Time{}
	}
	return t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Expired reports whether the access token expires within window.
func (t *Token) Expired(window time.Duration) bool {
	exp := t.Expiry()
	if exp.IsZero() {
		return false
	}
	return time.Now().Add(window).After(exp)
}

// OAuth2 converts t for use with golang.org/x/oauth2 clients. The ID token
// is available through Extra("id_token").
func (t *Token) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry(),
	}
	extra := map[string]interface{}{}
	if t.IDToken != "" {
		extra["id_token"] = t.IDToken
	}
	if t.Scope != "" {
		extra["scope"] = t.Scope
	}
	return tok.WithExtra(extra)
}

// Claims decodes the ID token claims without checking the signature. Use
// VerifyIDToken before trusting them.
func (t *Token) Claims() (map[string]interface{}, error) {
	if t.IDToken == "" {
		return nil, ErrNoIDToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.IDToken, claims); err != nil {
		return nil, fmt.Errorf("decoding id_token: %w", err)
	}
	return claims, nil
}

func (t *Token) VerifyIDToken(ctx context.Context, verifier *oidc.IDTokenVerifier) (*oidc.IDToken, error) {
	if t.IDToken == "" {
		return nil, ErrNoIDToken
	}
	return verifier.Verify(ctx, t.IDToken)
}
