package player

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

type httpDoer interface {
	Get(url string) (*http.Response, error)
}

// fetchFunc retrieves a stream URL and returns a seekable copy of its
// body plus a format hint ("mp3", "flac", "ogg", "wav").
type fetchFunc func(url string) (io.ReadSeekCloser, string, error)

// newFetcher buffers the whole response in memory. Decoders need a
// seekable source and tracks are a few tens of megabytes at most.
func newFetcher(client httpDoer) fetchFunc {
	return func(url string) (io.ReadSeekCloser, string, error) {
		resp, err := client.Get(url)
		if err != nil {
			return nil, "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("stream fetch: unexpected status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, "", err
		}
		return &memoryStream{Reader: bytes.NewReader(data)}, formatHint(resp, url), nil
	}
}

// memoryStream adapts a bytes.Reader to the ReadSeekCloser the
// decoders expect.
type memoryStream struct {
	*bytes.Reader
}

func (*memoryStream) Close() error { return nil }

// formatHint picks the container format from the Content-Type header,
// falling back to the URL's file extension.
func formatHint(resp *http.Response, url string) string {
	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch ct {
	case "audio/mpeg", "audio/mp3":
		return "mp3"
	case "audio/flac", "audio/x-flac":
		return "flac"
	case "audio/ogg", "application/ogg":
		return "ogg"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "wav"
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(strings.TrimSuffix(url, "/stream")), "."))
	switch ext {
	case "mp3", "flac", "ogg", "wav":
		return ext
	}
	return "mp3"
}

func decode(body io.ReadSeekCloser, format string) (beep.StreamSeekCloser, beep.Format, error) {
	switch format {
	case "mp3":
		return mp3.Decode(body)
	case "flac":
		return flac.Decode(body)
	case "ogg":
		return vorbis.Decode(body)
	case "wav":
		return wav.Decode(body)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported format: %s", format)
	}
}
