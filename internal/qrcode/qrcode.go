package qrcode

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	goqr "github.com/skip2/go-qrcode"
)

const (
	DefaultSize   = 256
	remoteTimeout = 15 * time.Second
)

// Generator renders text as a PNG QR code
type Generator interface {
	PNG(ctx context.Context, text string) ([]byte, error)
}

// LocalGenerator encodes QR codes in process
type LocalGenerator struct {
	Size int
}

// NewLocalGenerator returns a LocalGenerator; size <= 0 uses DefaultSize
func NewLocalGenerator(size int) *LocalGenerator {
	if size <= 0 {
		size = DefaultSize
	}
	return &LocalGenerator{Size: size}
}

// PNG encodes text with medium error recovery
func (g *LocalGenerator) PNG(ctx context.Context, text string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("qrcode: empty content")
	}
	png, err := goqr.Encode(text, goqr.Medium, g.Size)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encoding: %w", err)
	}
	return png, nil
}

// RemoteGenerator asks a QR generator service for the image:
// GET <url>?size=NxN&data=<text>
type RemoteGenerator struct {
	http *resty.Client
	url  string
	size int
}

// NewRemoteGenerator creates a RemoteGenerator for the service at baseURL
func NewRemoteGenerator(baseURL string, size int) *RemoteGenerator {
	if size <= 0 {
		size = DefaultSize
	}
	client := resty.New().
		SetTimeout(remoteTimeout).
		SetHeader("Accept", "image/png")

	return &RemoteGenerator{
		http: client,
		url:  baseURL,
		size: size,
	}
}

// PNG fetches the QR image for text. A failed request is not retried.
func (g *RemoteGenerator) PNG(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("qrcode: empty content")
	}

	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParam("size", fmt.Sprintf("%dx%d", g.size, g.size)).
		SetQueryParam("data", text).
		Get(g.url)
	if err != nil {
		return nil, fmt.Errorf("qrcode: requesting image: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("qrcode: unexpected status code: %d", resp.StatusCode())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/png") {
		return nil, fmt.Errorf("qrcode: unexpected content type %q", ct)
	}
	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("qrcode: empty image")
	}
	return resp.Body(), nil
}

// New returns the generator selected by mode ("local" or "remote")
func New(mode, remoteURL string, size int) (Generator, error) {
	switch mode {
	case "", "local":
		return NewLocalGenerator(size), nil
	case "remote":
		if remoteURL == "" {
			return nil, fmt.Errorf("qrcode: remote mode requires a generator URL")
		}
		return NewRemoteGenerator(remoteURL, size), nil
	default:
		return nil, fmt.Errorf("qrcode: unknown mode %q", mode)
	}
}

// DataURI embeds a PNG in a data: URI
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

var (
	_ Generator = (*LocalGenerator)(nil)
	_ Generator = (*RemoteGenerator)(nil)
)
