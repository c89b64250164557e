package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
)

type sampleBody struct {
	Name      string `json:"name" validate:"required,max=5"`
	Condition string `json:"condition" validate:"required,condition"`
	Platform  string `json:"platform" validate:"omitempty,platform"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"pix","condition":"good","platform":"x"}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Name != "pix" {
		t.Fatalf("unexpected name %q", body.Name)
	}
}

func TestDecodeJSONBodyValidation(t *testing.T) {
	cases := map[string]string{
		"unknown field":     `{"name":"pix","condition":"Good","extra":1}`,
		"malformed":         `{"name":`,
		"missing name":      `{"condition":"Good"}`,
		"bad condition":     `{"name":"pix","condition":"Broken"}`,
		"bad platform":      `{"name":"pix","condition":"Good","platform":"W"}`,
		"name over max len": `{"name":"toolong","condition":"Good"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
			var body sampleBody
			err := DecodeJSONBody(req, &body)
			if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDecodeJSONBodyFieldDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"condition":"Broken"}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", pkgerrors.As(err).Details())
	}
	if details["name"] != "is required" {
		t.Fatalf("unexpected name detail %q", details["name"])
	}
	if !strings.HasPrefix(details["condition"], "must be one of") {
		t.Fatalf("unexpected condition detail %q", details["condition"])
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20&bad=x&big=500", nil)
	if v, err := ParseQueryInt(req, "limit", 10, 1, 100); err != nil || v != 20 {
		t.Fatalf("expected 20, got %d %v", v, err)
	}
	if v, err := ParseQueryInt(req, "missing", 10, 1, 100); err != nil || v != 10 {
		t.Fatalf("expected default, got %d %v", v, err)
	}
	if _, err := ParseQueryInt(req, "bad", 10, 1, 100); err == nil {
		t.Fatalf("expected numeric error")
	}
	if _, err := ParseQueryInt(req, "big", 10, 1, 100); err == nil {
		t.Fatalf("expected range error")
	}
}

func TestParseQueryDecimal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?base_price=100.50&neg=-1&bad=abc", nil)
	v, err := ParseQueryDecimal(req, "base_price")
	if err != nil || v.StringFixed(2) != "100.50" {
		t.Fatalf("expected 100.50, got %s %v", v, err)
	}
	for _, key := range []string{"neg", "bad", "missing"} {
		if _, err := ParseQueryDecimal(req, key); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %s, got %v", key, err)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  héllo wörld  ", 5); got != "héllo" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString(" keep ", 0); got != "keep" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want string
		ok   bool
	}{
		"bearer prefix":  {raw: "Bearer abc.def", want: "abc.def", ok: true},
		"lowercase":      {raw: "bearer abc", want: "abc", ok: true},
		"raw token":      {raw: "abc", want: "abc", ok: true},
		"empty":          {raw: "  ", ok: false},
		"prefix only":    {raw: "Bearer ", ok: false},
		"embedded space": {raw: "Bearer a b", ok: false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := BearerToken(tc.raw)
			if tc.ok != (err == nil) {
				t.Fatalf("unexpected err %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
