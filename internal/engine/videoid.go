package engine

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	videoIDRE      = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	videoIDInURLRE = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})(?:[?&#/]|$)`)
)

// IsValidVideoID reports whether id looks like a YouTube video ID.
func IsValidVideoID(id string) bool {
	return videoIDRE.MatchString(id)
}

// ExtractVideoID returns the video ID from a bare ID or any common YouTube URL:
// watch?v=, youtu.be/, /shorts/, /embed/, /v/, /live/, playlist links carrying v=,
// and links with timestamps.
func ExtractVideoID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if IsValidVideoID(s) {
		return s, nil
	}
	if s == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidVideoID)
	}

	raw := s
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if u, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		host = strings.TrimPrefix(host, "m.")
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		switch {
		case host == "youtu.be":
			if len(parts) > 0 && IsValidVideoID(parts[0]) {
				return parts[0], nil
			}
		case strings.HasSuffix(host, "youtube.com") || strings.HasSuffix(host, "youtube-nocookie.com"):
			if v := u.Query().Get("v"); IsValidVideoID(v) {
				return v, nil
			}
			if len(parts) >= 2 {
				switch parts[0] {
				case "shorts", "embed", "v", "live", "e":
					if IsValidVideoID(parts[1]) {
						return parts[1], nil
					}
				}
			}
		}
	}

	if m := videoIDInURLRE.FindStringSubmatch(s); len(m) == 2 {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVideoID, input)
}
