package persist

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// CookieOptions configures the cookies written by CookieStorage.
type CookieOptions struct {
	Path     string
	Domain   string
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite

	// Expires sets an absolute expiry. Zero means a session cookie.
	Expires time.Time
}

// CookieStorage stores items as cookies for the span of one HTTP request.
//
// Reads come from the request's cookies; writes go to the response as
// Set-Cookie headers and are visible to later reads through the same
// CookieStorage. Values are query-escaped so JSON payloads survive cookie
// sanitizing.
type CookieStorage struct {
	r    *http.Request
	w    http.ResponseWriter
	opts CookieOptions

	mu      sync.Mutex
	written map[string]*string // nil entry: removed in this request
}

// NewCookieStorage creates a storage over r's cookies that writes to w.
func NewCookieStorage(r *http.Request, w http.ResponseWriter, opts CookieOptions) *CookieStorage {
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.SameSite == 0 {
		opts.SameSite = http.SameSiteLaxMode
	}
	return &CookieStorage{
		r:       r,
		w:       w,
		opts:    opts,
		written: make(map[string]*string),
	}
}

// GetItem returns the cookie value for key, preferring writes made through
// this storage.
func (c *CookieStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	v, ok := c.written[key]
	c.mu.Unlock()
	if ok {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}

	cookie, err := c.r.Cookie(key)
	if err != nil {
		return "", false, nil
	}
	value, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetItem writes a Set-Cookie header for key.
func (c *CookieStorage) SetItem(ctx context.Context, key, value string) error {
	cookie := c.cookie(key, url.QueryEscape(value))
	if !c.opts.Expires.IsZero() {
		cookie.Expires = c.opts.Expires
	}
	http.SetCookie(c.w, cookie)

	c.mu.Lock()
	c.written[key] = &value
	c.mu.Unlock()
	return nil
}

// RemoveItem writes an expired cookie for key.
func (c *CookieStorage) RemoveItem(ctx context.Context, key string) error {
	cookie := c.cookie(key, "")
	cookie.Expires = time.Unix(0, 0)
	cookie.MaxAge = -1
	http.SetCookie(c.w, cookie)

	c.mu.Lock()
	c.written[key] = nil
	c.mu.Unlock()
	return nil
}

func (c *CookieStorage) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.opts.Path,
		Domain:   c.opts.Domain,
		Secure:   c.opts.Secure,
		HttpOnly: c.opts.HTTPOnly,
		SameSite: c.opts.SameSite,
	}
}

var _ Storage = (*CookieStorage)(nil)
