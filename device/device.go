// Package device sends authenticated SOAP requests to the ONVIF event service
// of a single Axis device.
package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/icholy/digest"
	"go.viam.com/rdk/logging"

	"github.com/camtools/onvifevents/soap"
)

const (
	servicePath       = "/onvif/services"
	contentType       = "application/xml"
	httpClientTimeout = 30 * time.Second
)

// AuthMethod selects the HTTP authentication scheme used for requests.
type AuthMethod string

// Supported authentication schemes.
const (
	AuthBasic  AuthMethod = "basic"
	AuthDigest AuthMethod = "digest"
)

// ParseAuthMethod validates a user-supplied scheme name. Anything other than
// "basic" selects digest, matching the device's own default.
func ParseAuthMethod(s string) AuthMethod {
	if AuthMethod(strings.ToLower(s)) == AuthBasic {
		return AuthBasic
	}
	return AuthDigest
}

// Params configures the device connection.
type Params struct {
	// IP is the address of the device, without scheme or path.
	IP       string
	Auth     AuthMethod
	Username string
	Password string
	// HTTPProxy and HTTPSProxy are optional proxy URLs. The request scheme
	// follows whichever one is set: http when HTTPProxy, https when
	// HTTPSProxy, plain http when neither.
	HTTPProxy  string
	HTTPSProxy string
	// HTTPClient overrides the default client when set. Used by tests.
	HTTPClient *http.Client
}

// Device issues SOAP requests against one device endpoint.
type Device struct {
	xaddr  *url.URL
	params Params
	client *http.Client
	logger logging.Logger
}

// Response is the payload of a successful SOAP exchange.
type Response struct {
	StatusCode int
	Body       string
	// Encoding is always UTF-8 on success.
	Encoding string
}

// TransportError reports a failed SOAP exchange: a network failure, a
// timeout, or a response with a status other than 200.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("SOAP request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("SOAP request to %s failed with status code: %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// New constructs a Device for the given connection parameters.
func New(params Params, logger logging.Logger) (*Device, error) {
	if params.IP == "" {
		return nil, errors.New("device IP is required")
	}
	if params.Auth == "" {
		params.Auth = AuthDigest
	}

	scheme := "http"
	switch {
	case params.HTTPProxy != "":
		scheme = "http"
		logger.Infof("HTTP proxy: %s", params.HTTPProxy)
	case params.HTTPSProxy != "":
		scheme = "https"
		logger.Infof("HTTPS proxy: %s", params.HTTPSProxy)
	}
	xaddr := &url.URL{Scheme: scheme, Host: params.IP, Path: servicePath}

	dev := &Device{
		xaddr:  xaddr,
		params: params,
		client: params.HTTPClient,
		logger: logger,
	}

	if dev.client == nil {
		proxy, err := proxyFunc(params.HTTPProxy, params.HTTPSProxy)
		if err != nil {
			return nil, err
		}
		var rt http.RoundTripper = &http.Transport{Proxy: proxy}
		if params.Auth == AuthDigest {
			rt = &digest.Transport{
				Username:  params.Username,
				Password:  params.Password,
				Transport: rt,
			}
		}
		dev.client = &http.Client{
			Transport: rt,
			Timeout:   httpClientTimeout,
		}
	}

	logger.Infof("connect to device with URL: %s", xaddr)
	logger.Infof("authentication method: %s", params.Auth)
	return dev, nil
}

// proxyFunc returns a proxy selector keyed on the request scheme, the same
// shape as a requests-style {http: ..., https: ...} proxy map.
func proxyFunc(httpProxy, httpsProxy string) (func(*http.Request) (*url.URL, error), error) {
	if httpProxy == "" && httpsProxy == "" {
		return nil, nil
	}
	var httpURL, httpsURL *url.URL
	var err error
	if httpProxy != "" {
		if httpURL, err = url.Parse(httpProxy); err != nil {
			return nil, fmt.Errorf("failed to parse http proxy %q: %w", httpProxy, err)
		}
	}
	if httpsProxy != "" {
		if httpsURL, err = url.Parse(httpsProxy); err != nil {
			return nil, fmt.Errorf("failed to parse https proxy %q: %w", httpsProxy, err)
		}
	}
	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" {
			return httpsURL, nil
		}
		return httpURL, nil
	}, nil
}

// Endpoint returns the URL requests are sent to.
func (dev *Device) Endpoint() *url.URL {
	u := *dev.xaddr
	return &u
}

// Send POSTs one SOAP envelope to the device and returns the response body.
// Any network failure or non-200 status is a *TransportError.
func (dev *Device) Send(ctx context.Context, envelope soap.Envelope) (*Response, error) {
	endpoint := dev.xaddr.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(envelope.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if dev.params.Auth == AuthBasic {
		req.SetBasicAuth(dev.params.Username, dev.params.Password)
	}

	resp, err := dev.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	dev.logger.Debugf("response from %s: %s", endpoint, string(body))

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Encoding:   "UTF-8",
	}, nil
}
