package persist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vstore/pkg/store"
)

func TestCookieStorageReadsRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "prefs", Value: url.QueryEscape(`{"theme":"dark"}`)})

	c := NewCookieStorage(req, httptest.NewRecorder(), CookieOptions{})
	got, found, err := c.GetItem(context.Background(), "prefs")
	if err != nil || !found || got != `{"theme":"dark"}` {
		t.Errorf("GetItem() = %q, %v, %v", got, found, err)
	}
}

func TestCookieStorageWritesResponse(t *testing.T) {
	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	c := NewCookieStorage(req, rec, CookieOptions{
		Path:    "/app",
		Domain:  "example.com",
		Secure:  true,
		Expires: expires,
	})
	if err := c.SetItem(context.Background(), "prefs", `{"theme":"dark"}`); err != nil {
		t.Fatal(err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Set-Cookie headers = %d, want 1", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != "prefs" || ck.Path != "/app" || ck.Domain != "example.com" || !ck.Secure {
		t.Errorf("cookie = %+v", ck)
	}
	if !ck.Expires.Equal(expires) {
		t.Errorf("Expires = %v, want %v", ck.Expires, expires)
	}
	if v, _ := url.QueryUnescape(ck.Value); v != `{"theme":"dark"}` {
		t.Errorf("cookie value = %q", ck.Value)
	}
}

func TestCookieStorageRemove(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "prefs", Value: "1"})
	rec := httptest.NewRecorder()

	c := NewCookieStorage(req, rec, CookieOptions{})
	if err := c.RemoveItem(context.Background(), "prefs"); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := c.GetItem(context.Background(), "prefs"); found {
		t.Error("removed cookie still readable through the storage")
	}

	header := rec.Header().Get("Set-Cookie")
	if !strings.Contains(header, "Max-Age=0") {
		t.Errorf("Set-Cookie = %q, want an expiring cookie", header)
	}
}

func TestQueryStorageOnChange(t *testing.T) {
	var encoded []string
	q, err := NewQueryStorage("page=2", func(s string) { encoded = append(encoded, s) })
	if err != nil {
		t.Fatal(err)
	}

	p, err := PersistCodec(context.Background(), store.New("list"), Text[string](),
		WithStorage(q), WithKey("view"))
	if err != nil {
		t.Fatal(err)
	}
	p.Publish("grid")
	p.Remove(context.Background())

	want := []string{"page=2&view=grid", "page=2"}
	if len(encoded) != len(want) {
		t.Fatalf("OnChange calls = %v, want %v", encoded, want)
	}
	for i := range want {
		if encoded[i] != want[i] {
			t.Errorf("OnChange[%d] = %q, want %q", i, encoded[i], want[i])
		}
	}
}

func TestQueryStorageHydrates(t *testing.T) {
	q, _ := NewQueryStorage("count=41", nil)
	p, err := PersistCodec(context.Background(), store.New(0), Text[int](), WithStorage(q), WithKey("count"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Unwrap() != 41 {
		t.Errorf("Unwrap() = %d, want 41", p.Unwrap())
	}
}

func TestNewQueryStorageInvalid(t *testing.T) {
	if _, err := NewQueryStorage("%zz", nil); err == nil {
		t.Error("NewQueryStorage() should reject a malformed query")
	}
}

func TestHandlerRoutes(t *testing.T) {
	backend := NewMemoryStorage()
	backend.SetItem(context.Background(), "a/b", "v1")
	backend.SetItem(context.Background(), "100%", "full")
	h := NewHandler(backend)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		want   string
	}{
		{name: "get escaped key", method: "GET", path: "/items/a%2Fb", status: http.StatusOK, want: "v1"},
		{name: "get missing", method: "GET", path: "/items/nope", status: http.StatusNotFound},
		{name: "put", method: "PUT", path: "/items/new", body: "v2", status: http.StatusNoContent},
		{name: "delete", method: "DELETE", path: "/items/a%2Fb", status: http.StatusNoContent},
		{name: "unknown route", method: "GET", path: "/other", status: http.StatusNotFound},
		{name: "percent key", method: "GET", path: "/items/100%25", status: http.StatusOK, want: "full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.want != "" && rec.Body.String() != tt.want {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.want)
			}
		})
	}

	if v, _, _ := backend.GetItem(context.Background(), "new"); v != "v2" {
		t.Errorf("PUT stored %q, want v2", v)
	}
	if _, found, _ := backend.GetItem(context.Background(), "a/b"); found {
		t.Error("DELETE left the key in place")
	}
}

func TestHandlerBodyLimit(t *testing.T) {
	h := NewHandler(NewMemoryStorage())
	req := httptest.NewRequest("PUT", "/items/big", strings.NewReader(strings.Repeat("x", MaxItemSize+1)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestRemoteStorageServerError(t *testing.T) {
	srv := httptest.NewServer(NewHandler(failingStorage{setErr: context.DeadlineExceeded}))
	defer srv.Close()

	r := NewRemoteStorage(srv.URL+"/", nil)
	err := r.SetItem(context.Background(), "k", "v")
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("SetItem() error = %v, want a 500 status error", err)
	}
}

func TestPersistOverRemoteStorage(t *testing.T) {
	backend := NewMemoryStorage()
	srv := httptest.NewServer(NewHandler(backend))
	defer srv.Close()

	ctx := context.Background()
	p, err := Persist(ctx, store.New([]string{}), WithStorage(NewRemoteStorage(srv.URL, srv.Client())), WithKey("todos"))
	if err != nil {
		t.Fatal(err)
	}
	p.Publish([]string{"write tests"})

	raw, _, _ := backend.GetItem(ctx, "todos")
	if raw != `["write tests"]` {
		t.Errorf("server stored %q", raw)
	}
}
