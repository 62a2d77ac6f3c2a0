package persist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxItemSize bounds the request body accepted by the item handler.
const MaxItemSize = 1 << 20

// NewHandler exposes storage over HTTP:
//
//	GET    /items/{key}  200 with the raw value, or 404
//	PUT    /items/{key}  stores the request body, 204
//	DELETE /items/{key}  204
//
// Keys are path-escaped, so they may contain '/'. RemoteStorage is the
// matching client.
func NewHandler(storage Storage) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(EscapedRoutePath)

	r.Get("/items/{key}", func(w http.ResponseWriter, r *http.Request) {
		key, ok := itemKey(w, r)
		if !ok {
			return
		}
		value, found, err := storage.GetItem(r.Context(), key)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !found {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, value)
	})

	r.Put("/items/{key}", func(w http.ResponseWriter, r *http.Request) {
		key, ok := itemKey(w, r)
		if !ok {
			return
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxItemSize))
		if err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		if err := storage.SetItem(r.Context(), key, string(body)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Delete("/items/{key}", func(w http.ResponseWriter, r *http.Request) {
		key, ok := itemKey(w, r)
		if !ok {
			return
		}
		if err := storage.RemoveItem(r.Context(), key); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

// EscapedRoutePath is chi middleware that routes on the escaped request
// path, so URL params can be unescaped exactly once. Routers that mount
// NewHandler must use it as well.
func EscapedRoutePath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePath == "" {
			rctx.RoutePath = r.URL.EscapedPath()
		}
		next.ServeHTTP(w, r)
	})
}

func itemKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		http.Error(w, "invalid key", http.StatusBadRequest)
		return "", false
	}
	return key, true
}

// RemoteStorage is a Storage client for a server built with NewHandler.
type RemoteStorage struct {
	baseURL string
	client  *http.Client
}

// NewRemoteStorage creates a client for the item API at baseURL.
// If client is nil, http.DefaultClient is used.
func NewRemoteStorage(baseURL string, client *http.Client) *RemoteStorage {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (s *RemoteStorage) itemURL(key string) string {
	return s.baseURL + "/items/" + url.PathEscape(key)
}

func (s *RemoteStorage) do(ctx context.Context, method, key string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.itemURL(key), body)
	if err != nil {
		return nil, err
	}
	return s.client.Do(req)
}

// GetItem fetches key from the server.
func (s *RemoteStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	resp, err := s.do(ctx, http.MethodGet, key, nil)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", false, err
		}
		return string(data), true, nil
	case http.StatusNotFound:
		return "", false, nil
	default:
		return "", false, statusError(http.MethodGet, key, resp)
	}
}

// SetItem stores value under key on the server.
func (s *RemoteStorage) SetItem(ctx context.Context, key, value string) error {
	resp, err := s.do(ctx, http.MethodPut, key, strings.NewReader(value))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return statusError(http.MethodPut, key, resp)
	}
	return nil
}

// RemoveItem deletes key on the server.
func (s *RemoteStorage) RemoveItem(ctx context.Context, key string) error {
	resp, err := s.do(ctx, http.MethodDelete, key, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return statusError(http.MethodDelete, key, resp)
	}
	return nil
}

func statusError(method, key string, resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s %s: %s: %s", method, key, resp.Status, strings.TrimSpace(string(msg)))
}

var _ Storage = (*RemoteStorage)(nil)
