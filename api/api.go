// Package api provides low-level primitives for implementing interfaces
// to various HTTP APIs.
package api

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/apex/log"
)

// A Client sends authenticated JSON requests. The zero value uses a
// default transport with certificate verification on.
type Client struct {
	http *http.Client
}

// NewClient constructs a Client. When verifySSL is false, server
// certificates are not checked; this mirrors the `ssl.verify` knob of
// the configuration file.
func NewClient(verifySSL bool) *Client {
	transport := &http.Transport{
		DisableKeepAlives: true,
	}
	if !verifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		http: &http.Client{
			Timeout:   60 * time.Second,
			Transport: transport,
		},
	}
}

func (c *Client) client() *http.Client {
	if c == nil || c.http == nil {
		return http.DefaultClient
	}
	return c.http
}

// Get is a convenience method for MakeAPIRequest.
func (c *Client) Get(endpoint *url.URL, apiKey string, body []byte) (res string, statusCode int, err error) {
	return c.stringAPIRequest(http.MethodGet, endpoint, apiKey, body)
}

// Post is a convenience method for MakeAPIRequest.
func (c *Client) Post(endpoint *url.URL, apiKey string, body []byte) (res string, statusCode int, err error) {
	return c.stringAPIRequest(http.MethodPost, endpoint, apiKey, body)
}

// GetJSON is a convenience method for MakeAPIRequest.
func (c *Client) GetJSON(endpoint *url.URL, apiKey string, body []byte, v interface{}) (statusCode int, err error) {
	return c.jsonAPIRequest(http.MethodGet, endpoint, apiKey, body, v)
}

// PostJSON is a convenience method for MakeAPIRequest.
func (c *Client) PostJSON(endpoint *url.URL, apiKey string, body []byte, v interface{}) (statusCode int, err error) {
	return c.jsonAPIRequest(http.MethodPost, endpoint, apiKey, body, v)
}

// Download streams the body of endpoint to w.
func (c *Client) Download(endpoint *url.URL, w io.Writer) error {
	response, err := c.client().Get(endpoint.String())
	if err != nil {
		return fmt.Errorf("could not send download request: %s", err.Error())
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s failed with HTTP %d", endpoint, response.StatusCode)
	}
	_, err = io.Copy(w, response.Body)
	if err != nil {
		return fmt.Errorf("could not read download response: %s", err.Error())
	}
	return nil
}

func (c *Client) stringAPIRequest(method string, endpoint *url.URL, apiKey string, body []byte) (string, int, error) {
	res, code, err := c.MakeAPIRequest(method, endpoint, apiKey, body)
	if err != nil {
		return "", code, err
	}
	return string(res), code, nil
}

func (c *Client) jsonAPIRequest(method string, endpoint *url.URL, apiKey string, body []byte, v interface{}) (int, error) {
	res, code, err := c.MakeAPIRequest(method, endpoint, apiKey, body)
	if err != nil {
		return code, err
	}
	// Error responses are often not JSON; callers dispatch on the
	// status code.
	if code < 200 || code >= 300 {
		return code, nil
	}
	jsonErr := json.Unmarshal(res, v)
	if jsonErr != nil {
		return code, fmt.Errorf("could not unmarshal JSON API response: %s", jsonErr.Error())
	}
	return code, nil
}

func isTimeout(err error) bool {
	switch e := err.(type) {
	case net.Error:
		return e.Timeout()
	case *url.Error:
		return e.Err == io.EOF
	}
	return false
}

type TimeoutError error

// MakeAPIRequest runs and logs a request backed by the Client.
func (c *Client) MakeAPIRequest(method string, endpoint *url.URL, apiKey string, body []byte) (res []byte, statusCode int, err error) {
	log.WithFields(log.Fields{
		"endpoint": endpoint.String(),
		"method":   method,
	}).Debug("making API request")

	req, err := http.NewRequest(method, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("could not construct API HTTP request: %s", err.Error())
	}
	req.Close = true
	if apiKey != "" {
		req.Header.Set("Authorization", "token "+apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := c.client().Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, 0, TimeoutError(fmt.Errorf("API request timed out: %s", err.Error()))
		}
		return nil, 0, fmt.Errorf("could not send API HTTP request: %s", err.Error())
	}
	defer response.Body.Close()

	res, err = ioutil.ReadAll(response.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("could not read API HTTP response: %s", err.Error())
	}

	return res, response.StatusCode, nil
}
