package source

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"psp.com/kviz/backend/internal/questionbank"
)

const userAgent = "Kviz-Source-Reader/1.0"

// maxRemoteSize caps the body read from a remote source. Larger bodies
// are rejected, not truncated.
const maxRemoteSize = 8 << 20

// DefaultClient is used by Read for http(s) locations.
var DefaultClient = &http.Client{Timeout: 8 * time.Second}

// Fetch downloads a remote source with a single GET. A 404 is reported as
// NotFoundError; other non-200 responses and transport failures are
// returned as plain errors. There is no retry.
func Fetch(client *http.Client, url string) (Source, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return Source{}, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return Source{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Source{}, &questionbank.NotFoundError{Path: url}
	}
	if resp.StatusCode != http.StatusOK {
		return Source{}, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize+1))
	if err != nil {
		return Source{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	if len(data) > maxRemoteSize {
		return Source{}, fmt.Errorf("fetch %s: response exceeds %d bytes", url, maxRemoteSize)
	}
	return decode(url, data, isHTMLName(url) || isHTMLType(resp.Header.Get("Content-Type")))
}

func isHTMLType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}
