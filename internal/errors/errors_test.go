package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "V002",
			wantMsg: "Configuration file could not be parsed",
			wantCat: CategoryConfig,
		},
		{
			name:    "storage error",
			code:    "V021",
			wantMsg: "Key not found",
			wantCat: CategoryStorage,
		},
		{
			name:    "runtime error",
			code:    "V060",
			wantMsg: "Server failed",
			wantCat: CategoryRuntime,
		},
		{
			name:    "unknown error code",
			code:    "V999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "key %q is empty", "prefs")
	if err.Message != `key "prefs" is empty` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestError_Error(t *testing.T) {
	if got := New("V021").Error(); got != "V021: Key not found" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := New("V023").Wrap(fmt.Errorf("connection refused"))
	if got := wrapped.Error(); got != "V023: Storage operation failed: connection refused" {
		t.Errorf("Error() with cause = %q", got)
	}

	bare := &Error{Message: "test error"}
	if bare.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", bare.Error(), "test error")
	}
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vstore.toml")
	content := `log_level = "info"

[storage]
backend = "file"
dir = ./state
table = "items"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestError_WithLocation(t *testing.T) {
	path := writeConfig(t)
	err := New("V002").WithLocation(path, 5, 7)

	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.File != path || err.Location.Line != 5 || err.Location.Column != 7 {
		t.Errorf("Location = %+v", err.Location)
	}
	want := []string{"[storage]", `backend = "file"`, "dir = ./state", `table = "items"`}
	if len(err.Context) != len(want) {
		t.Fatalf("Context = %q, want %q", err.Context, want)
	}
	for i := range want {
		if err.Context[i] != want[i] {
			t.Errorf("Context[%d] = %q, want %q", i, err.Context[i], want[i])
		}
	}
}

func TestError_WithLocationMissingFile(t *testing.T) {
	err := New("V002").WithLocation(filepath.Join(t.TempDir(), "missing.toml"), 3, 0)
	if err.Context != nil {
		t.Errorf("Context = %q, want nil for an unreadable file", err.Context)
	}
}

func TestError_Builders(t *testing.T) {
	err := New("V003").WithSuggestion("Use debug, info, warn or error").WithDetail("log_level is invalid")
	if err.Suggestion != "Use debug, info, warn or error" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if err.Detail != "log_level is invalid" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestError_Wrap(t *testing.T) {
	inner := os.ErrNotExist
	outer := New("V001").Wrap(inner)

	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(outer, os.ErrNotExist) {
		t.Error("errors.Is should see through the wrapper")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "V023") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	e := New("V021")
	if FromError(e, "V023") != e {
		t.Error("FromError should return *Error as-is")
	}
	if FromError(fmt.Errorf("get prefs: %w", e), "V023") != e {
		t.Error("FromError should find a wrapped *Error")
	}

	std := fmt.Errorf("boom")
	result := FromError(std, "V023")
	if result.Wrapped != std || result.Code != "V023" {
		t.Errorf("FromError(std) = %+v", result)
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{name: "nil location", loc: nil, want: ""},
		{name: "with column", loc: &Location{File: "vstore.toml", Line: 10, Column: 5}, want: "vstore.toml:10:5"},
		{name: "without column", loc: &Location{File: "vstore.yaml", Line: 10}, want: "vstore.yaml:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	path := writeConfig(t)
	err := New("V002").
		WithLocation(path, 5, 7).
		WithSuggestion("Strings must be quoted").
		Wrap(fmt.Errorf("expected value"))

	formatted := err.Format()

	for _, want := range []string{
		"ERROR V002: Configuration file could not be parsed",
		path + ":5:7",
		"→    5 │ dir = ./state",
		"       │       ^",
		"Cause: expected value",
		"Hint: Strings must be quoted",
		"Learn more: " + docBase + "V002",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q in:\n%s", want, formatted)
		}
	}
}

func TestFormatContextNearFileStart(t *testing.T) {
	DisableColors()
	defer EnableColors()

	path := writeConfig(t)
	formatted := New("V003").WithLocation(path, 1, 0).Format()
	if !strings.Contains(formatted, `→    1 │ log_level = "info"`) {
		t.Errorf("first line not highlighted:\n%s", formatted)
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("V021").WithLocation("vstore.toml", 10, 5)
	want := "vstore.toml:10:5: V021: Key not found"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("V002").WithLocation("vstore.toml", 10, 5).Wrap(fmt.Errorf(`bad "quote"`))
	json := err.FormatJSON()

	for _, want := range []string{
		`"code":"V002"`,
		`"category":"config"`,
		`"message":"Configuration file could not be parsed"`,
		`"location":{"file":"vstore.toml","line":10,"column":5}`,
		`"cause":"bad \"quote\""`,
	} {
		if !strings.Contains(json, want) {
			t.Errorf("FormatJSON() = %s, missing %s", json, want)
		}
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("load: %w", New("V001")))
	if !strings.Contains(buf.String(), "ERROR V001: Configuration file not found") {
		t.Errorf("Fprint(*Error) = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, fmt.Errorf("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Fprint(error) = %q", buf.String())
	}
}

func TestFprintFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	coded := fmt.Errorf("get: %w", New("V021"))
	tests := []struct {
		name   string
		err    error
		format string
		want   string
	}{
		{"compact", coded, OutputCompact, "V021: Key not found\n"},
		{"json", coded, OutputJSON, `"code":"V021"`},
		{"text", coded, OutputText, "ERROR V021: Key not found"},
		{"unknown falls back to text", coded, "xml", "ERROR V021: Key not found"},
		{"plain compact", fmt.Errorf("disk full"), OutputCompact, "disk full\n"},
		{"plain json", fmt.Errorf("disk full"), OutputJSON, `"category":"runtime","message":"disk full"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FprintFormat(&buf, tt.err, tt.format)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("FprintFormat(%s) = %q, want it to contain %q", tt.format, buf.String(), tt.want)
			}
		})
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("GetAllCodes() should return codes")
	}
	if codes[0] != "V001" {
		t.Errorf("codes[0] = %q, want V001 (sorted)", codes[0])
	}
	for _, code := range codes {
		tmpl, _ := GetTemplate(code)
		if tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s is incomplete: %+v", code, tmpl)
		}
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate("V004")
	if !ok {
		t.Fatal("V004 should exist")
	}
	if template.Message != "Unknown storage backend" {
		t.Error("Template message mismatch")
	}
	if _, ok := GetTemplate("V999"); ok {
		t.Error("V999 should not exist")
	}
}

func TestRegister(t *testing.T) {
	Register("V999", ErrorTemplate{
		Category: CategoryRuntime,
		Message:  "Custom test error",
	})
	defer delete(registry, "V999")

	if err := New("V999"); err.Message != "Custom test error" {
		t.Errorf("Message = %q, want %q", err.Message, "Custom test error")
	}
}

func TestWrapText(t *testing.T) {
	if got := wrapText("short text", 100); len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}
	if got := wrapText("this is a longer text that should be wrapped", 20); len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
