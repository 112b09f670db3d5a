package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewer(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.2.0", "1.1.9", true},
		{"1.10.0", "1.9.0", true},
		{"1.2", "1.2.0", false},
		{"1.2.0", "1.2.0", false},
		{"1.2.1", "v1.2.0", true},
		{"1.2.0-rc1", "1.1.0", true},
		{"0.1.0", "dev", true},
		{"garbage", "1.0.0", false},
	}
	for _, tt := range tests {
		if got := Newer(tt.a, tt.b); got != tt.want {
			t.Errorf("Newer(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/vnd.github+json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		w.Write([]byte(`{"tag_name":"v1.3.0","html_url":"https://github.com/awano27/fin-news-site/releases/tag/v1.3.0"}`))
	}))
	defer srv.Close()

	res, err := Check(context.Background(), srv.Client(), srv.URL, "1.2.0")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res == nil || res.LatestVersion != "1.3.0" {
		t.Fatalf("Check = %+v, want 1.3.0", res)
	}

	res, err = Check(context.Background(), srv.Client(), srv.URL, "v1.3.0")
	if err != nil || res != nil {
		t.Errorf("up to date: got %+v, %v", res, err)
	}
}

func TestCheckHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := Check(context.Background(), srv.Client(), srv.URL, "1.0.0"); err == nil {
		t.Error("expected error for 403")
	}
}
