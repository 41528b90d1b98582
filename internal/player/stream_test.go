package player

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFormatHint(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		url         string
		want        string
	}{
		{"mpeg header", "audio/mpeg", "http://s/api/songs/1/stream", "mp3"},
		{"flac header", "audio/flac", "http://s/api/songs/1/stream", "flac"},
		{"ogg header", "application/ogg", "http://s/api/songs/1/stream", "ogg"},
		{"wav header", "audio/x-wav", "http://s/api/songs/1/stream", "wav"},
		{"header with params", "audio/mpeg; charset=binary", "http://s/api/songs/1/stream", "mp3"},
		{"extension fallback", "application/octet-stream", "http://s/files/track.flac/stream", "flac"},
		{"no hint defaults to mp3", "application/octet-stream", "http://s/api/songs/1/stream", "mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{"Content-Type": []string{tt.contentType}}}
			if got := formatHint(resp, tt.url); got != tt.want {
				t.Errorf("formatHint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetcher_BuffersBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/flac")
		w.Write([]byte("fLaC-bytes"))
	}))
	defer srv.Close()

	fetch := newFetcher(srv.Client())
	body, format, err := fetch(srv.URL + "/api/songs/1/stream")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	defer body.Close()

	if format != "flac" {
		t.Errorf("format = %q, want flac", format)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fLaC-bytes" {
		t.Errorf("body = %q", data)
	}

	// The copy is seekable, which the decoders require.
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		t.Errorf("Seek failed: %v", err)
	}
}

func TestFetcher_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	fetch := newFetcher(srv.Client())
	if _, _, err := fetch(srv.URL + "/api/songs/404/stream"); err == nil {
		t.Error("expected error for non-200 response")
	}
}
