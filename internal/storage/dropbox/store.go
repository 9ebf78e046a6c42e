// Package dropbox stores the session artifact in Dropbox through the
// content API (files/download and files/upload).
package dropbox

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf16"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/tgwa-bridge/internal/httpclient"
	"github.com/GriffinCanCode/tgwa-bridge/internal/storage"
)

// DefaultContentURL is the Dropbox content endpoint.
const DefaultContentURL = "https://content.dropboxapi.com"

const (
	downloadPath = "/2/files/download"
	uploadPath   = "/2/files/upload"
	apiArgHeader = "Dropbox-API-Arg"
)

// Store implements storage.Store against the Dropbox HTTP API.
type Store struct {
	client *httpclient.Client
}

// APIError is a non-success reply from Dropbox.
type APIError struct {
	Status  int
	Summary string
}

func (e *APIError) Error() string {
	if e.Summary != "" {
		return fmt.Sprintf("dropbox: HTTP %d: %s", e.Status, e.Summary)
	}
	return fmt.Sprintf("dropbox: HTTP %d", e.Status)
}

type downloadArg struct {
	Path string `json:"path"`
}

type uploadArg struct {
	Path       string `json:"path"`
	Mode       string `json:"mode"`
	Autorename bool   `json:"autorename"`
	Mute       bool   `json:"mute"`
}

type errorReply struct {
	Summary string `json:"error_summary"`
}

// New creates a store that authenticates with token. An empty contentURL
// selects DefaultContentURL.
func New(token, contentURL string) *Store {
	if contentURL == "" {
		contentURL = DefaultContentURL
	}
	opts := httpclient.DefaultOptions("dropbox")
	opts.BaseURL = strings.TrimRight(contentURL, "/")
	return NewWithClient(token, httpclient.New(opts))
}

// NewWithClient creates a store on an existing client.
func NewWithClient(token string, client *httpclient.Client) *Store {
	client.SetBearerAuth(token)
	client.Resty.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil || r == nil {
			return false
		}
		return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
	})
	return &Store{client: client}
}

// Name implements storage.Store.
func (s *Store) Name() string { return "dropbox" }

// Client exposes the HTTP client, for breaker status reporting.
func (s *Store) Client() *httpclient.Client { return s.client }

// Fetch implements storage.Store.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	arg, err := apiArg(downloadArg{Path: key})
	if err != nil {
		return nil, err
	}
	req, err := s.client.Request(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(func() (*resty.Response, error) {
		resp, err := req.SetHeader(apiArgHeader, arg).Post(downloadPath)
		if err != nil {
			return nil, err
		}
		return resp, serviceFault(resp)
	})
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode() == http.StatusOK:
		return resp.Body(), nil
	case resp.StatusCode() == http.StatusConflict:
		apiErr := decodeError(resp)
		if strings.HasPrefix(apiErr.Summary, "path/not_found") {
			return nil, storage.ErrNotFound
		}
		return nil, apiErr
	default:
		return nil, decodeError(resp)
	}
}

// Upload implements storage.Store with overwrite semantics.
func (s *Store) Upload(ctx context.Context, key string, data []byte) error {
	arg, err := apiArg(uploadArg{Path: key, Mode: "overwrite", Mute: true})
	if err != nil {
		return err
	}
	req, err := s.client.Request(ctx)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(func() (*resty.Response, error) {
		resp, err := req.
			SetHeader(apiArgHeader, arg).
			SetHeader("Content-Type", "application/octet-stream").
			SetBody(data).
			Post(uploadPath)
		if err != nil {
			return nil, err
		}
		return resp, serviceFault(resp)
	})
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

// serviceFault reports the responses that should count against the breaker:
// server errors, throttling and rejected credentials.
func serviceFault(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= 500 || code == http.StatusTooManyRequests || code == http.StatusUnauthorized {
		return decodeError(resp)
	}
	return nil
}

func decodeError(resp *resty.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode()}
	var reply errorReply
	if err := sonic.Unmarshal(resp.Body(), &reply); err == nil {
		apiErr.Summary = reply.Summary
	} else {
		apiErr.Summary = strings.TrimSpace(resp.String())
	}
	return apiErr
}

// apiArg encodes v for the Dropbox-API-Arg header, which must be ASCII.
func apiArg(v interface{}) (string, error) {
	raw, err := sonic.MarshalString(v)
	if err != nil {
		return "", fmt.Errorf("dropbox: encode api arg: %w", err)
	}
	return asciiJSON(raw), nil
}

func asciiJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
			continue
		}
		fmt.Fprintf(&b, `\u%04x`, r)
	}
	return b.String()
}
