package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPStore talks to the remote durable store's REST interface:
// GET  {base}/users/{user}/{family}           -> {"key": <doc>, ...}
// PUT  {base}/users/{user}/{family}/{key}     <- <doc>
type HTTPStore struct {
	base   string
	apiKey string
	http   *http.Client
}

func NewHTTPStore(base, apiKey string) *HTTPStore {
	return &HTTPStore{
		base:   base,
		apiKey: apiKey,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPStore) ReadAll(ctx context.Context, userID, family string) (map[string]Document, error) {
	u := s.familyURL(userID, family)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	s.authorize(req)

	res, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("syncer: read %s: %w", family, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return map[string]Document{}, nil
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("syncer: read %s: %s", family, res.Status)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("syncer: decode %s: %w", family, err)
	}
	docs := make(map[string]Document, len(raw))
	for k, v := range raw {
		docs[k] = Document(v)
	}
	return docs, nil
}

func (s *HTTPStore) Write(ctx context.Context, userID, family, key string, doc Document) error {
	// Local precheck so oversized documents never leave the process.
	if len(doc) > MaxDocumentSize {
		return fmt.Errorf("%w: %d bytes", ErrDocumentTooLarge, len(doc))
	}

	u := s.familyURL(userID, family) + "/" + url.PathEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(doc))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	res, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("syncer: write %s/%s: %w", family, key, err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, io.LimitReader(res.Body, 4096))

	switch {
	case res.StatusCode == http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: rejected by store", ErrDocumentTooLarge)
	case res.StatusCode >= 300:
		return fmt.Errorf("syncer: write %s/%s: %s", family, key, res.Status)
	}
	return nil
}

func (s *HTTPStore) familyURL(userID, family string) string {
	return fmt.Sprintf("%s/users/%s/%s", s.base, url.PathEscape(userID), url.PathEscape(family))
}

func (s *HTTPStore) authorize(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}
}
