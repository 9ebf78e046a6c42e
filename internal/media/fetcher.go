// Package media downloads attachments from the source platform.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/tgwa-bridge/internal/httpclient"
)

// ErrTooLarge is returned when an attachment exceeds the size cap.
var ErrTooLarge = errors.New("attachment exceeds size limit")

// Download is a fetched attachment.
type Download struct {
	Data []byte
	// MimeType is sniffed from the content, without parameters.
	MimeType string
	// Extension includes the leading dot, or is empty when unknown.
	Extension string
}

// Fetcher downloads files by URL with a size cap.
type Fetcher struct {
	client   *httpclient.Client
	maxBytes int64
}

// NewFetcher creates a fetcher. maxBytes must be positive.
func NewFetcher(client *httpclient.Client, maxBytes int64) *Fetcher {
	return &Fetcher{client: client, maxBytes: maxBytes}
}

// Fetch downloads url. The body is streamed and abandoned as soon as it
// passes the cap, so an oversized file never sits fully in memory.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Download, error) {
	req, err := f.client.Request(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(func() (*resty.Response, error) {
		resp, err := req.SetDoNotParseResponse(true).Get(url)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			closeBody(resp)
			return nil, fmt.Errorf("media server error: %s", resp.Status())
		}
		return resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to download media: %s", resp.Status())
	}
	if resp.RawResponse.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.RawResponse.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.RawBody(), f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read media: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}

	mt := mimetype.Detect(data)
	return &Download{
		Data:      data,
		MimeType:  baseType(mt.String()),
		Extension: mt.Extension(),
	}, nil
}

func closeBody(resp *resty.Response) {
	if body := resp.RawBody(); body != nil {
		_ = body.Close()
	}
}

// baseType strips MIME parameters such as charset.
func baseType(mime string) string {
	base, _, _ := strings.Cut(mime, ";")
	return strings.TrimSpace(base)
}

// Pick prefers the type the sender declared unless it is missing or generic.
func Pick(declared, sniffed string) string {
	declared = baseType(declared)
	if declared == "" || declared == "application/octet-stream" {
		return sniffed
	}
	return declared
}

// IsImage reports whether mime is an image type.
func IsImage(mime string) bool {
	return strings.HasPrefix(baseType(mime), "image/")
}
