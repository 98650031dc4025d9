// Package mymemory implements translator.Provider using the MyMemory
// translation API (https://mymemory.translated.net).
//
// The API is a single GET endpoint taking the text in "q" and a "src|dst"
// language pair in "langpair". No key is required; an optional contact
// address in "de" raises the daily quota.
package mymemory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nadzzz/kannadavoice/internal/config"
)

// Provider queries the MyMemory API for one fixed language pair.
type Provider struct {
	endpoint string
	langPair string
	email    string
	client   *http.Client
}

// New creates a MyMemory provider from config. The configured timeout bounds
// the whole outbound call.
func New(cfg config.TranslationConfig) *Provider {
	return &Provider{
		endpoint: cfg.Endpoint,
		langPair: cfg.LangPair(),
		email:    cfg.Email,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "mymemory" }

// Translate sends text to MyMemory and returns responseData.translatedText.
func (p *Provider) Translate(ctx context.Context, text string) (string, error) {
	q := make(url.Values)
	q.Set("q", text)
	q.Set("langpair", p.langPair)
	if p.email != "" {
		q.Set("de", p.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mymemory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("mymemory failed (status %d): %s", resp.StatusCode, body)
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding mymemory response: %w", err)
	}

	if result.ResponseStatus != http.StatusOK {
		return "", fmt.Errorf("mymemory error: %s (%d)", result.ResponseDetails, result.ResponseStatus)
	}

	return result.ResponseData.TranslatedText, nil
}

type response struct {
	ResponseData struct {
		TranslatedText string  `json:"translatedText"`
		Match          float64 `json:"match"`
	} `json:"responseData"`
	ResponseStatus  status `json:"responseStatus"`
	ResponseDetails string `json:"responseDetails"`
}

// status accepts responseStatus both as a JSON number and as a numeric
// string; MyMemory uses either depending on the code path.
type status int

func (s *status) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("responseStatus %q: %w", data, err)
	}
	*s = status(n)
	return nil
}
