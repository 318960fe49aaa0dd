package notebooklm

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StorageState is the browser session export (Playwright format) that carries
// the Google session cookies NotebookLM needs.
type StorageState struct {
	Cookies []Cookie          `json:"cookies"`
	Origins []json.RawMessage `json:"origins,omitempty"`
}

type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

var ErrNoCookies = errors.New("notebooklm: storage state has no cookies")

// WriteStorageState decodes a base64 storage state blob and writes it to path,
// creating the parent directory. An empty blob is a no-op so a state file
// provisioned some other way is left alone.
func WriteStorageState(b64, path string) error {
	b64 = strings.TrimSpace(b64)
	if b64 == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("decode storage state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write storage state: %w", err)
	}
	return nil
}

// LoadStorageState reads and validates the storage state at path.
func LoadStorageState(path string) (*StorageState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read storage state: %w", err)
	}
	var state StorageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse storage state %s: %w", path, err)
	}
	if len(state.Cookies) == 0 {
		return nil, ErrNoCookies
	}
	return &state, nil
}

// HTTPCookies converts the stored cookies, skipping expired ones. Domain and
// Secure are dropped so the cookies attach to whatever host the session talks
// to, including a plain-http bridge on localhost.
func (s *StorageState) HTTPCookies(now time.Time) []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		if c.Name == "" {
			continue
		}
		ck := &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path}
		// -1 marks a session cookie in the export.
		if c.Expires > 0 {
			exp := time.Unix(int64(c.Expires), 0)
			if exp.Before(now) {
				continue
			}
			ck.Expires = exp
		}
		cookies = append(cookies, ck)
	}
	return cookies
}
