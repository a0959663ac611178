package lang

import (
	"strings"
	"unicode"

	"github.com/RadhiFadlillah/whatlanggo"
)

// DefaultSampleChars bounds how much text Detect inspects.
const DefaultSampleChars = 1000

const (
	statisticalMinConfidence = 0.5
	scriptThreshold          = 0.30
	minKeywordHits           = 2
)

// Detection methods.
const (
	MethodStatistical = "statistical"
	MethodScript      = "script"
	MethodKeywords    = "keywords"
	MethodDefault     = "default"
)

// Detection is a best guess of the language of a text sample.
type Detection struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// IsEnglish reports whether the detection resolved to English.
func (d Detection) IsEnglish() bool { return IsEnglish(d.Code) }

// Detector is a general-purpose statistical language identifier.
type Detector interface {
	Detect(text string) (code string, confidence float64)
}

// WhatlangDetector identifies languages with trigram profiles.
type WhatlangDetector struct{}

// Detect implements Detector.
func (WhatlangDetector) Detect(text string) (string, float64) {
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		code = info.Lang.Iso6393()
	}
	return code, info.Confidence
}

// Detect guesses the language of text from its first sampleChars runes.
// sampleChars <= 0 means DefaultSampleChars. The result is deterministic.
func (m *Matcher) Detect(text string, sampleChars int) Detection {
	if sampleChars <= 0 {
		sampleChars = DefaultSampleChars
	}
	sample := firstRunes(text, sampleChars)
	if strings.TrimSpace(sample) == "" {
		return Detection{Code: "en", Confidence: 0.3, Method: MethodDefault}
	}

	if m.detector != nil {
		if code, conf := m.detector.Detect(sample); code != "" && conf >= statisticalMinConfidence {
			return Detection{Code: Base(code), Confidence: clamp01(conf), Method: MethodStatistical}
		}
	}
	if d, ok := detectScript(sample); ok {
		return d
	}
	if d, ok := detectKeywords(sample); ok {
		return d
	}
	return Detection{Code: "en", Confidence: 0.4, Method: MethodDefault}
}

var kana = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3040, Hi: 0x309f, Stride: 1}, // Hiragana
		{Lo: 0x30a0, Hi: 0x30ff, Stride: 1}, // Katakana
	},
}

// scriptRules are checked in order; the first table containing a rune wins.
var scriptRules = []struct {
	code  string
	table *unicode.RangeTable
}{
	{"am", unicode.Ethiopic},
	{"ar", unicode.Arabic},
	{"ja", kana},
	{"ko", unicode.Hangul},
	{"zh", unicode.Han},
	{"ru", unicode.Cyrillic},
	{"hi", unicode.Devanagari},
	{"he", unicode.Hebrew},
	{"th", unicode.Thai},
	{"ka", unicode.Georgian},
	{"hy", unicode.Armenian},
	{"bn", unicode.Bengali},
	{"ta", unicode.Tamil},
}

// detectScript assigns a language when one non-Latin script covers more than
// scriptThreshold of all letters.
func detectScript(sample string) (Detection, bool) {
	counts := make([]int, len(scriptRules))
	letters := 0
	for _, r := range sample {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for i, rule := range scriptRules {
			if unicode.Is(rule.table, r) {
				counts[i]++
				break
			}
		}
	}
	if letters == 0 {
		return Detection{}, false
	}

	// Japanese mixes kana with Han; any kana turns the CJK share into "ja".
	jaIdx, zhIdx := indexOfRule("ja"), indexOfRule("zh")
	if counts[jaIdx] > 0 {
		counts[jaIdx] += counts[zhIdx]
		counts[zhIdx] = 0
	}

	best := -1
	for i, c := range counts {
		if c > 0 && (best < 0 || c > counts[best]) {
			best = i
		}
	}
	if best < 0 {
		return Detection{}, false
	}
	share := float64(counts[best]) / float64(letters)
	if share <= scriptThreshold {
		return Detection{}, false
	}
	return Detection{
		Code:       scriptRules[best].code,
		Confidence: clamp01(0.5 + share/2),
		Method:     MethodScript,
	}, true
}

func indexOfRule(code string) int {
	for i, r := range scriptRules {
		if r.code == code {
			return i
		}
	}
	return -1
}

// stopwords per Latin-script language, in tie-break order.
var stopwords = []struct {
	code  string
	words map[string]bool
}{
	{"en", wordSet("the and is are of to that it you this was for with have be not we they")},
	{"es", wordSet("el los las del que por para con una pero como más está muy también porque esto hay y")},
	{"fr", wordSet("le les des est une dans pour pas vous nous avec sur ce qui et mais très aussi c'est je")},
	{"de", wordSet("der die das und ist nicht ein eine ich sie mit auf für den von zu auch wir sind")},
}

// detectKeywords scores Latin-script text against stopword lists.
// English winning (or tying) falls through to the English default.
func detectKeywords(sample string) (Detection, bool) {
	words := strings.FieldsFunc(strings.ToLower(sample), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	if len(words) == 0 {
		return Detection{}, false
	}

	hits := make([]int, len(stopwords))
	for _, w := range words {
		for i, sw := range stopwords {
			if sw.words[w] {
				hits[i]++
			}
		}
	}

	best := 0
	for i := 1; i < len(hits); i++ {
		if hits[i] > hits[best] {
			best = i
		}
	}
	if stopwords[best].code == "en" || hits[best] < minKeywordHits {
		return Detection{}, false
	}
	ratio := float64(hits[best]) / float64(len(words))
	return Detection{
		Code:       stopwords[best].code,
		Confidence: 0.5 + min(0.3, ratio),
		Method:     MethodKeywords,
	}, true
}

func wordSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		out[w] = true
	}
	return out
}

func firstRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func clamp01(f float64) float64 {
	return max(0, min(1, f))
}
