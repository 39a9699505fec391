package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MyMemoryTranslator implements Translator using the MyMemory API.
// API docs: https://mymemory.translated.net/doc/spec.php
type MyMemoryTranslator struct {
	httpClient *http.Client
	baseURL    string
	langPair   string
}

// NewMyMemoryTranslator creates a translator for the given language
// pair, e.g. "en|zh-CN".
func NewMyMemoryTranslator(langPair string) *MyMemoryTranslator {
	return &MyMemoryTranslator{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  "https://api.mymemory.translated.net/get",
		langPair: langPair,
	}
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus any `json:"responseStatus"` // number or quoted string
}

// Translate returns the translated text for an English source.
func (t *MyMemoryTranslator) Translate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty text")
	}

	params := url.Values{}
	params.Set("q", text)
	params.Set("langpair", t.langPair)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Vocadex/1.0")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch translation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var mr myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", fmt.Errorf("decode translation response: %w", err)
	}

	translated := strings.TrimSpace(mr.ResponseData.TranslatedText)
	if translated == "" {
		return "", fmt.Errorf("empty translation for %q", text)
	}
	return translated, nil
}
