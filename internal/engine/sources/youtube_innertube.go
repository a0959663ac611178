package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// YouTube player API: low-level constants, types, and HTTP primitives.
// Track listing and caption fetching live in youtube_captions.go.

const (
	ytWatchURL       = "https://www.youtube.com/watch"
	ytInnertubeURL   = "https://www.youtube.com/youtubei/v1/player"
	ytTimedTextURL   = "https://www.youtube.com/api/timedtext"
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
	ytConsentCookie  = "CONSENT=YES+1"
)

// --- ANDROID client types (/player endpoint) ---

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

// playerResp is the subset of ytInitialPlayerResponse / player JSON we need.
type playerResp struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string    `json:"baseUrl"`
	LanguageCode string    `json:"languageCode"`
	Kind         string    `json:"kind"` // "asr" = auto-generated
	Name         trackName `json:"name"`
}

type trackName struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (n trackName) String() string {
	if n.SimpleText != "" {
		return n.SimpleText
	}
	var sb strings.Builder
	for _, r := range n.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

func (p *playerResp) hasTracks() bool {
	return p != nil && p.Captions != nil && len(p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) > 0
}

func (p *playerResp) status() (status, reason string) {
	if p == nil || p.PlayabilityStatus == nil {
		return "", ""
	}
	return p.PlayabilityStatus.Status, p.PlayabilityStatus.Reason
}

// androidPlayer calls the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/cloud) IP addresses.
func (y *YouTube) androidPlayer(ctx context.Context, videoID string) (*playerResp, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, y.cfg.Retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.cfg.PlayerURL+"?prettyPrint=false", bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", ytAndroidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
		return y.cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, engine.Transient(fmt.Errorf("android player: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, engine.Transient(fmt.Errorf("android player: %w", &engine.StatusError{StatusCode: resp.StatusCode}))
	}

	var p playerResp
	if err := json.NewDecoder(io.LimitReader(resp.Body, 3*1024*1024)).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return &p, nil
}

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// watchPagePlayer scrapes the watch page HTML and decodes ytInitialPlayerResponse.
func (y *YouTube) watchPagePlayer(ctx context.Context, videoID string) (*playerResp, error) {
	watchURL := y.cfg.WatchURL + "?v=" + videoID + "&hl=en"

	body, err := y.watchPage(ctx, watchURL)
	if err != nil {
		return nil, err
	}

	idx := bytes.Index(body, []byte(ytInitialPlayerResponseMarker))
	if idx < 0 {
		// consent walls and bot checks serve a page without the player
		return nil, engine.Transient(errors.New("ytInitialPlayerResponse not found in watch page"))
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var p playerResp
	if err := json.Unmarshal(jsonData, &p); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return &p, nil
}

func (y *YouTube) watchPage(ctx context.Context, watchURL string) ([]byte, error) {
	if y.cfg.Browser != nil {
		return y.watchPageBrowser(ctx, watchURL)
	}

	resp, err := engine.RetryHTTP(ctx, y.cfg.Retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range engine.ChromeHeaders() {
			if strings.EqualFold(k, "accept-encoding") {
				continue // let net/http negotiate gzip and decode it
			}
			req.Header.Set(k, v)
		}
		req.Header.Set("Cookie", ytConsentCookie)
		return y.cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, engine.Transient(fmt.Errorf("watch page: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, engine.Transient(fmt.Errorf("watch page: %w", &engine.StatusError{StatusCode: resp.StatusCode}))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return nil, engine.Transient(fmt.Errorf("read watch page: %w", err))
	}
	return body, nil
}

// watchPageBrowser fetches the watch page through the stealth client, which
// carries a Chrome TLS fingerprint and rotates proxies when a pool is configured.
func (y *YouTube) watchPageBrowser(ctx context.Context, watchURL string) ([]byte, error) {
	headers := engine.ChromeHeaders()
	headers["cookie"] = ytConsentCookie
	body, err := engine.RetryDo(ctx, y.cfg.Retry, func() ([]byte, error) {
		data, _, status, err := y.cfg.Browser.Do(http.MethodGet, watchURL, headers, nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, &engine.StatusError{StatusCode: status}
		}
		return data, nil
	})
	if err != nil {
		return nil, engine.Transient(fmt.Errorf("watch page (browser): %w", err))
	}
	return body, nil
}

// extractJSON returns the leading balanced JSON object in b, or nil.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}
