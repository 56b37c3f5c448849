package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"codeberg.org/snonux/lingochain/internal"
)

// maxErrorBody bounds how much of a failed response ends up in an error
const maxErrorBody = 200

// httpService is the transport shared by the HTTP based backends
type httpService struct {
	name     string
	cfg      Config
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

func newHTTPService(name string, cfg Config, defaultEndpoint string) *httpService {
	return &httpService{
		name:     name,
		cfg:      cfg,
		endpoint: cfg.endpoint(defaultEndpoint),
		client:   &http.Client{},
		limiter:  newLimiter(cfg),
	}
}

func (h *httpService) Name() string {
	return h.name
}

func (h *httpService) Enabled() bool {
	return h.cfg.Enabled
}

// get issues a GET request for path with query and decodes the JSON answer into out
func (h *httpService) get(ctx context.Context, path string, query url.Values, out any) error {
	target := h.endpoint + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return h.do(ctx, http.MethodGet, target, nil, out)
}

// post sends payload as JSON to path and decodes the JSON answer into out
func (h *httpService) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return h.do(ctx, http.MethodPost, h.endpoint+path, body, out)
}

func (h *httpService) do(ctx context.Context, method, target string, body []byte, out any) error {
	callCtx, cancel, err := begin(ctx, h.limiter, h.cfg)
	if err != nil {
		return err
	}
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(callCtx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, internal.Excerpt(string(data), maxErrorBody))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// languageEntry is one element of a LibreTranslate style language listing
type languageEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func languageCodes(entries []languageEntry) []string {
	codes := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Code != "" {
			codes = append(codes, e.Code)
		}
	}
	return codes
}
