package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// VideoURLResult explains why a submitted video URL was rejected.
type VideoURLResult struct {
	IsValid bool
	Reason  string
}

// CheckVideoURL accepts absolute http(s) URLs with a host. Anything else,
// including values that could be read as command line flags, is rejected
// before it reaches the downloader.
func CheckVideoURL(raw string) VideoURLResult {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return VideoURLResult{Reason: "No YouTube URL provided"}
	}
	if strings.HasPrefix(raw, "-") {
		return VideoURLResult{Reason: "Invalid YouTube URL"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return VideoURLResult{Reason: fmt.Sprintf("Invalid YouTube URL: %v", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return VideoURLResult{Reason: "Invalid YouTube URL: scheme must be http or https"}
	}
	if u.Host == "" {
		return VideoURLResult{Reason: "Invalid YouTube URL: missing host"}
	}
	return VideoURLResult{IsValid: true}
}
