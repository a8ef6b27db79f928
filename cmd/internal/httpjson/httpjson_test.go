package httpjson

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteError_FlatEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, http.StatusNotFound, "not_found", "Todo not found")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := rr.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("cache-control=%q", got)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "not_found" || body["message"] != "Todo not found" || len(body) != 2 {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestDecode(t *testing.T) {
	type req struct {
		Email string `json:"email"`
	}

	cases := []struct {
		name    string
		body    string
		strict  bool
		wantErr bool
	}{
		{name: "ok", body: `{"email":"a@b.c"}`, strict: true},
		{name: "empty", body: ``, strict: true, wantErr: true},
		{name: "unknown field strict", body: `{"email":"a","x":1}`, strict: true, wantErr: true},
		{name: "unknown field lenient", body: `{"email":"a","x":1}`},
		{name: "trailing data", body: `{"email":"a"} {}`, strict: true, wantErr: true},
		{name: "not json", body: `email=a`, wantErr: true},
		{name: "too large", body: `{"email":"` + strings.Repeat("a", 100) + `"}`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			var dst req
			var err error
			if tc.strict {
				err = Decode(rr, r, 64, &dst)
			} else {
				err = DecodeLenient(rr, r, 64, &dst)
			}
			if (err != nil) != tc.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"Bearer abc":      "abc",
		"bearer  abc ":    "abc",
		"Basic dXNlcjpw":  "",
		"Bearer":          "",
		"Token abc extra": "",
	}
	for header, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		if got := BearerToken(r); got != want {
			t.Fatalf("BearerToken(%q)=%q want %q", header, got, want)
		}
	}
}
