// Package relay forwards translation-API requests on behalf of the
// webview frontend, which cannot call the API directly because the
// provider sends no CORS headers.
package relay

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/voicetray/voicetray/internal/config"
)

// Request is one proxied HTTP request. Only GET and POST are allowed.
type Request struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body,omitempty"`
}

// Response carries the upstream status and body back verbatim; the
// caller interprets both.
type Response struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type Client struct {
	http    *resty.Client
	allowed map[string]bool
	log     zerolog.Logger
}

func New(cfg config.RelayConfig, log zerolog.Logger) *Client {
	allowed := make(map[string]bool, len(cfg.AllowedHosts))
	for _, h := range cfg.AllowedHosts {
		allowed[strings.ToLower(h)] = true
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		http:    resty.New().SetTimeout(timeout),
		allowed: allowed,
		log:     log,
	}
}

// Forward performs the proxied request. Hosts outside the allow list
// and methods other than GET/POST are rejected before any network IO.
func (c *Client) Forward(ctx context.Context, req Request) (*Response, error) {
	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid relay URL: %w", err)
	}
	if !c.allowed[strings.ToLower(target.Hostname())] {
		return nil, fmt.Errorf("relay host not allowed: %s", target.Hostname())
	}

	r := c.http.R().SetContext(ctx).SetHeaders(req.Headers)

	var resp *resty.Response
	switch strings.ToUpper(req.Method) {
	case "GET":
		resp, err = r.Get(req.URL)
	case "POST":
		if req.Body != "" {
			r.SetBody(req.Body)
		}
		resp, err = r.Post(req.URL)
	default:
		return nil, fmt.Errorf("unsupported relay method: %s", req.Method)
	}
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}

	c.log.Debug().Str("url", req.URL).Int("status", resp.StatusCode()).Msg("Relayed request")
	return &Response{Status: resp.StatusCode(), Body: string(resp.Body())}, nil
}
