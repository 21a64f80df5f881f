// Package scanner talks to the external website scanning service.
package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/netx"
)

// Scanner runs one scan and returns the service's JSON report as-is.
type Scanner interface {
	Scan(ctx context.Context, url, scanType string) (json.RawMessage, error)
}

type scanRequest struct {
	URL      string `json:"url"`
	ScanType string `json:"scan_type"`
}

// Client calls POST {baseURL}/scan.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Scan returns common.ErrUpstreamFailure for transport errors, non-2xx
// statuses and bodies that are not JSON.
func (c *Client) Scan(ctx context.Context, url, scanType string) (json.RawMessage, error) {
	body, err := netx.PostJSON(ctx, c.http, c.baseURL+"/scan", scanRequest{URL: url, ScanType: scanType})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamFailure, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: scanner returned a non-JSON body", common.ErrUpstreamFailure)
	}
	return json.RawMessage(body), nil
}
