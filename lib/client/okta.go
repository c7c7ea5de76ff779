// Client for sending IDX and OAuth2 requests to Okta
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"syscall"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/segmentio/okta-idx/lib/idx/types"
	log "github.com/sirupsen/logrus"
)

const (
	Timeout = time.Duration(60 * time.Second)

	UserAgent = "okta-idx-go/1.0"
)

// cookies Okta uses to recognize a returning browser or device.
var sessionCookieNames = []string{"idx", "DT"}

type OktaClientOptions struct {
	// user supplied http client. If passed in this will replace the default
	HTTPClient *http.Client
	// http client timeout. default 60s
	HTTPClientTimeout *time.Duration
	// extra headers sent with every request
	Header http.Header
}

type SessionCache interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte, label string) error
}

// OktaClient implements types.Transport over net/http. It keeps Okta's
// cookies in a jar and, when a SessionCache is given, across invocations.
type OktaClient struct {
	BaseURL  *url.URL
	clientID string
	sessions SessionCache
	client   http.Client
	header   http.Header
}

// Creates an OktaClient for the org that hosts issuer.
//
// -- session caching: passing in a SessionCache persists the idx and DT
//      cookies so Okta can recognize the device on the next run.
func NewOktaClient(issuer, clientID string, sessions SessionCache, opts *OktaClientOptions) (*OktaClient, error) {
	var client http.Client

	if opts == nil {
		opts = &OktaClientOptions{}
	}

	parsed, err := url.Parse(issuer)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid issuer %q %w", issuer, ErrInvalidIssuer)
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}

	if opts.HTTPClient != nil {
		client = *opts.HTTPClient
	} else {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("%v %w", "Unable to create cookie jar", err)
		}

		transCfg := &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSHandshakeTimeout: Timeout,
		}

		if opts.HTTPClientTimeout != nil {
			transCfg.TLSHandshakeTimeout = *opts.HTTPClientTimeout
		}

		client = http.Client{
			Transport: transCfg,
			Timeout:   Timeout,
			Jar:       jar,
		}
	}
	// token and introspect replies are never redirects we want to follow
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	oktaClient := OktaClient{
		BaseURL:  base,
		clientID: clientID,
		sessions: sessions,
		client:   client,
		header:   opts.Header,
	}

	// failing to retrieve a cached cookie shouldn't fail the entire
	// operation.
	if oktaClient.sessions != nil {
		err = oktaClient.retrieveSessionCookies()
		if err != nil {
			log.Debug("Unable to retrieve session, got err: ", err)
		}
	}
	return &oktaClient, nil
}

func (o *OktaClient) getSessionCookieKeyringKey(name string) string {
	return "okta-idx-cookie-" + name + "-" + o.clientID + "-" + o.BaseURL.Host
}

func (o *OktaClient) retrieveSessionCookies() error {
	if o.sessions == nil {
		return fmt.Errorf("session NOT retrieved. Reason: Session Backend not defined")
	}
	if o.client.Jar == nil {
		return fmt.Errorf("session NOT retrieved. Reason: http client has no cookie jar")
	}
	var found []*http.Cookie
	for _, name := range sessionCookieNames {
		data, err := o.sessions.Get(o.getSessionCookieKeyringKey(name))
		if err != nil {
			continue
		}
		found = append(found, &http.Cookie{Name: name, Value: string(data)})
	}
	if len(found) == 0 {
		return ErrNoSession
	}
	o.client.Jar.SetCookies(o.BaseURL, found)
	log.Debugf("Using %d cached Okta cookies", len(found))
	return nil
}

// Takes the session cookies in the cookie jar and saves them, so they
// survive the client being recreated.
func (o *OktaClient) saveSessionCookies() error {
	if o.sessions == nil {
		return fmt.Errorf("session NOT saved. Reason: Session Backend not defined")
	}
	if o.client.Jar == nil {
		return nil
	}
	for _, cookie := range o.client.Jar.Cookies(o.BaseURL) {
		if cookie.Value == "" || !isSessionCookie(cookie.Name) {
			continue
		}
		err := o.sessions.Put(o.getSessionCookieKeyringKey(cookie.Name),
			[]byte(cookie.Value),
			"okta "+cookie.Name+" cookie for "+o.BaseURL.Host)
		if err != nil {
			return err
		}
		log.Debug("Saving Okta cookie: ", cookie.Name)
	}
	return nil
}

func isSessionCookie(name string) bool {
	for _, n := range sessionCookieNames {
		if n == name {
			return true
		}
	}
	return false
}

// Send makes a request to Okta. Non-2xx replies are returned as-is; only
// failures to get a reply at all are errors.
func (o *OktaClient) Send(ctx context.Context, r *types.Request) (*types.Response, error) {
	requestUrl, err := url.Parse(r.URL)
	if err != nil {
		return nil, &types.APIClientError{Kind: types.ErrorKindValidation, Method: r.Method, URL: r.URL, Err: err}
	}

	header := http.Header{
		"Cache-Control": []string{"no-cache"},
		"User-Agent":    []string{UserAgent},
		// disable gzip encoding; it was causing spurious EOFs
		"Accept-Encoding": []string{"identity"},
	}
	if r.Accept != "" {
		header.Set("Accept", r.Accept)
	}
	if r.ContentType != "" {
		header.Set("Content-Type", r.ContentType)
	}
	for k, vs := range o.header {
		header[k] = vs
	}
	for k, vs := range r.Header {
		header[k] = vs
	}

	req := &http.Request{
		Method:        r.Method,
		URL:           requestUrl,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          ioutil.NopCloser(bytes.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
		Host:          requestUrl.Host,
	}
	req = req.WithContext(ctx)
	log.Debug(r.Method, " ", requestUrl.String())

	res, err := o.client.Do(req)
	if err != nil {
		return nil, &types.APIClientError{Kind: types.ErrorKindNetwork, Method: r.Method, URL: r.URL, Err: classify(ctx, err)}
	}
	defer res.Body.Close()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, &types.APIClientError{
			Kind:       types.ErrorKindNetwork,
			Method:     r.Method,
			URL:        r.URL,
			StatusCode: res.StatusCode,
			Err:        classify(ctx, err),
		}
	}
	log.Debugf("%s %s: %d", r.Method, requestUrl.String(), res.StatusCode)

	if o.sessions != nil {
		if err := o.saveSessionCookies(); err != nil {
			log.Debug("Unable to save session, got err: ", err)
		}
	}

	return &types.Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       body,
	}, nil
}

// classify marks errors caused by the connection going away, as opposed
// to the caller giving up, with types.ErrConnectionLost.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var opErr *net.OpError
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ENETUNREACH),
		errors.As(err, &opErr):
		return fmt.Errorf("%v %w", err, types.ErrConnectionLost)
	}
	return err
}
