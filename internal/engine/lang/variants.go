// Package lang expands language codes into caption-track variants and
// guesses the language of transcript text.
package lang

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultVariants lists the regional, script and ISO 639-2 aliases that caption
// tracks commonly use for a language. Extend it per Matcher with WithVariants.
var DefaultVariants = map[string][]string{
	"am": {"am-ET", "amh"},
	"ar": {"ar-SA", "ar-EG", "ar-AE", "ara"},
	"az": {"az-AZ", "aze"},
	"bn": {"bn-BD", "bn-IN", "ben"},
	"de": {"de-DE", "de-AT", "de-CH", "deu", "ger"},
	"en": {"en-US", "en-GB", "en-AU", "en-CA", "en-IN", "eng"},
	"es": {"es-ES", "es-MX", "es-419", "es-US", "spa"},
	"fa": {"fa-IR", "fas", "per"},
	"fr": {"fr-FR", "fr-CA", "fra", "fre"},
	"gu": {"gu-IN", "guj"},
	"ha": {"ha-NG", "hau"},
	"he": {"he-IL", "iw", "heb"},
	"hi": {"hi-IN", "hin"},
	"hy": {"hy-AM", "hye"},
	"id": {"id-ID", "in", "ind"},
	"ig": {"ig-NG", "ibo"},
	"it": {"it-IT", "ita"},
	"ja": {"ja-JP", "jpn"},
	"ka": {"ka-GE", "kat"},
	"kk": {"kk-KZ", "kaz"},
	"km": {"km-KH", "khm"},
	"kn": {"kn-IN", "kan"},
	"ko": {"ko-KR", "kor"},
	"ky": {"ky-KG", "kir"},
	"lo": {"lo-LA", "lao"},
	"ml": {"ml-IN", "mal"},
	"mn": {"mn-MN", "mon"},
	"mr": {"mr-IN", "mar"},
	"my": {"my-MM", "mya", "bur"},
	"ne": {"ne-NP", "nep"},
	"nl": {"nl-NL", "nl-BE", "nld"},
	"om": {"om-ET", "orm"},
	"pl": {"pl-PL", "pol"},
	"pt": {"pt-BR", "pt-PT", "por"},
	"ru": {"ru-RU", "rus"},
	"rw": {"rw-RW", "kin"},
	"si": {"si-LK", "sin"},
	"so": {"so-SO", "som"},
	"sw": {"sw-KE", "sw-TZ", "swa"},
	"ta": {"ta-IN", "ta-LK", "tam"},
	"te": {"te-IN", "tel"},
	"tg": {"tg-TJ", "tgk"},
	"th": {"th-TH", "tha"},
	"ti": {"ti-ET", "ti-ER", "tir"},
	"tr": {"tr-TR", "tur"},
	"uk": {"uk-UA", "ukr"},
	"ur": {"ur-PK", "urd"},
	"uz": {"uz-UZ", "uzb"},
	"vi": {"vi-VN", "vie"},
	"yo": {"yo-NG", "yor"},
	"zh": {"zh-Hans", "zh-Hant", "zh-CN", "zh-TW", "zh-HK", "zho", "chi"},
}

// Matcher expands language codes and detects text language.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	variants map[string][]string
	detector Detector
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithVariants adds or overrides variant table entries.
func WithVariants(extra map[string][]string) Option {
	return func(m *Matcher) {
		for k, v := range extra {
			m.variants[strings.ToLower(k)] = append([]string(nil), v...)
		}
	}
}

// WithDetector replaces the statistical detector.
func WithDetector(d Detector) Option {
	return func(m *Matcher) { m.detector = d }
}

// WithoutDetector disables statistical detection; only script and keyword
// heuristics are used.
func WithoutDetector() Option {
	return func(m *Matcher) { m.detector = nil }
}

// NewMatcher returns a Matcher over a private copy of DefaultVariants.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		variants: make(map[string][]string, len(DefaultVariants)),
		detector: WhatlangDetector{},
	}
	for k, v := range DefaultVariants {
		m.variants[k] = append([]string(nil), v...)
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ExpandVariants returns code followed by its known variants, without duplicates.
// Unknown two-letter codes get a heuristic "xx-XX" region suffix.
func (m *Matcher) ExpandVariants(code string) []string {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	out := []string{code}
	seen := map[string]bool{strings.ToLower(code): true}
	add := func(v string) {
		if k := strings.ToLower(v); !seen[k] {
			seen[k] = true
			out = append(out, v)
		}
	}

	if vs, ok := m.variants[strings.ToLower(code)]; ok {
		for _, v := range vs {
			add(v)
		}
		return out
	}
	if len(code) == 2 && isASCIILetters(code) {
		add(strings.ToLower(code) + "-" + strings.ToUpper(code))
	}
	return out
}

// Base returns the lowercase primary language subtag of code
// ("am-ET" → "am", "zh-Hant" → "zh", "amh" → "am").
func Base(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if tag, err := language.Parse(code); err == nil {
		if b, conf := tag.Base(); conf != language.No {
			return b.String()
		}
	}
	code = strings.ReplaceAll(code, "_", "-")
	if i := strings.IndexByte(code, '-'); i > 0 {
		code = code[:i]
	}
	return strings.ToLower(code)
}

// SameBase reports whether a and b share a primary language subtag.
func SameBase(a, b string) bool {
	return a != "" && b != "" && Base(a) == Base(b)
}

// IsEnglish reports whether code denotes English in any region.
func IsEnglish(code string) bool {
	return Base(code) == "en"
}

func isASCIILetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
