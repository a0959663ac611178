package lang

import (
	"reflect"
	"strings"
	"testing"
)

func TestExpandVariants(t *testing.T) {
	m := NewMatcher()
	tests := []struct {
		name string
		code string
		want []string
	}{
		{"amharic table", "am", []string{"am", "am-ET", "amh"}},
		{"case preserved", "AM", []string{"AM", "am-ET", "amh"}},
		{"unknown two letter", "xx", []string{"xx", "xx-XX"}},
		{"unknown long code", "en-ZZ", []string{"en-ZZ"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.ExpandVariants(tt.code); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandVariants(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestExpandVariantsFirstIsInput(t *testing.T) {
	m := NewMatcher()
	for code := range DefaultVariants {
		got := m.ExpandVariants(code)
		if len(got) < 2 || got[0] != code {
			t.Errorf("ExpandVariants(%q) = %v", code, got)
		}
	}
}

func TestWithVariantsExtendsCopy(t *testing.T) {
	m := NewMatcher(WithVariants(map[string][]string{"qu": {"qu-PE"}, "am": {"am-ET"}}))
	if got := m.ExpandVariants("qu"); !reflect.DeepEqual(got, []string{"qu", "qu-PE"}) {
		t.Errorf("custom entry: got %v", got)
	}
	if got := m.ExpandVariants("am"); !reflect.DeepEqual(got, []string{"am", "am-ET"}) {
		t.Errorf("override: got %v", got)
	}
	if got := NewMatcher().ExpandVariants("am"); len(got) != 3 {
		t.Errorf("defaults mutated: %v", got)
	}
}

func TestBase(t *testing.T) {
	tests := []struct {
		code, want string
	}{
		{"am-ET", "am"},
		{"en_US", "en"},
		{"zh-Hant", "zh"},
		{"es-419", "es"},
		{"AR", "ar"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Base(tt.code); got != tt.want {
			t.Errorf("Base(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
	if !SameBase("pt-BR", "pt-PT") {
		t.Error("SameBase(pt-BR, pt-PT) = false")
	}
	if SameBase("en", "") {
		t.Error("SameBase with empty code must be false")
	}
}

func TestDetectScripts(t *testing.T) {
	m := NewMatcher(WithoutDetector())
	tests := []struct {
		name string
		text string
		want string
	}{
		{"amharic", "ሰላም ለዓለም እንዴት ናችሁ ይህ ሙከራ ነው", "am"},
		{"arabic", "مرحبا بالعالم هذا اختبار بسيط", "ar"},
		{"russian", "Привет мир, это простой тест", "ru"},
		{"hindi", "नमस्ते दुनिया यह एक परीक्षण है", "hi"},
		{"chinese", "你好世界这是一个测试", "zh"},
		{"japanese", "こんにちは世界、これはテストです", "ja"},
		{"korean", "안녕하세요 세계 이것은 테스트입니다", "ko"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := m.Detect(tt.text, 0)
			if d.Code != tt.want {
				t.Errorf("Detect() code = %q, want %q", d.Code, tt.want)
			}
			if d.Method != MethodScript {
				t.Errorf("Detect() method = %q, want %q", d.Method, MethodScript)
			}
			if d.Confidence < 0.5 || d.Confidence > 1 {
				t.Errorf("Detect() confidence = %v out of range", d.Confidence)
			}
		})
	}
}

func TestDetectScriptBelowThreshold(t *testing.T) {
	m := NewMatcher(WithoutDetector())
	// two Cyrillic letters among many Latin ones
	d := m.Detect("this is a long english sentence with a word да inside it", 0)
	if d.Code != "en" {
		t.Errorf("Detect() = %+v, want en", d)
	}
}

func TestDetectKeywords(t *testing.T) {
	m := NewMatcher(WithoutDetector())
	tests := []struct {
		name string
		text string
		want string
	}{
		{"spanish", "hola a todos, hoy vamos a hablar de los precios y por qué la gente está muy preocupada", "es"},
		{"french", "bonjour à tous, aujourd'hui nous parlons des prix et pourquoi c'est très important pour vous", "fr"},
		{"german", "hallo zusammen, heute sprechen wir über die Preise und warum das für uns nicht einfach ist", "de"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := m.Detect(tt.text, 0)
			if d.Code != tt.want || d.Method != MethodKeywords {
				t.Errorf("Detect() = %+v, want %s via keywords", d, tt.want)
			}
			if d.Confidence < 0.5 || d.Confidence > 0.8 {
				t.Errorf("confidence %v outside [0.5, 0.8]", d.Confidence)
			}
		})
	}
}

func TestDetectDefaultsToEnglish(t *testing.T) {
	m := NewMatcher(WithoutDetector())
	for _, text := range []string{"", "   ", "the cat is on the mat and it is happy", "12345 !!!"} {
		d := m.Detect(text, 0)
		if d.Code != "en" {
			t.Errorf("Detect(%q) = %+v, want en", text, d)
		}
		if d.Confidence < 0.3 || d.Confidence > 0.5 {
			t.Errorf("Detect(%q) confidence %v outside [0.3, 0.5]", text, d.Confidence)
		}
	}
}

func TestDetectSampleBound(t *testing.T) {
	m := NewMatcher(WithoutDetector())
	text := strings.Repeat("hello ", 50) + strings.Repeat("Привет ", 500)
	if d := m.Detect(text, 100); d.Code != "en" {
		t.Errorf("sampled prefix should be English, got %+v", d)
	}
	if d := m.Detect(text, 4000); d.Code != "ru" {
		t.Errorf("full text should be Russian, got %+v", d)
	}
}

type fixedDetector struct {
	code string
	conf float64
}

func (f fixedDetector) Detect(string) (string, float64) { return f.code, f.conf }

func TestDetectStatistical(t *testing.T) {
	t.Run("confident detector wins", func(t *testing.T) {
		m := NewMatcher(WithDetector(fixedDetector{"pt-BR", 0.9}))
		d := m.Detect("qualquer texto", 0)
		if d.Code != "pt" || d.Method != MethodStatistical {
			t.Errorf("Detect() = %+v", d)
		}
	})
	t.Run("unsure detector falls back", func(t *testing.T) {
		m := NewMatcher(WithDetector(fixedDetector{"pt", 0.1}))
		d := m.Detect("Привет мир, это простой тест", 0)
		if d.Code != "ru" || d.Method != MethodScript {
			t.Errorf("Detect() = %+v", d)
		}
	})
}

func TestDetectDeterministic(t *testing.T) {
	m := NewMatcher()
	text := "ሰላም ለዓለም እንዴት ናችሁ ይህ ሙከራ ነው"
	first := m.Detect(text, 0)
	for range 20 {
		if got := m.Detect(text, 0); got != first {
			t.Fatalf("Detect() not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestSupported(t *testing.T) {
	if len(SupportedLanguages) != 48 {
		t.Errorf("len(SupportedLanguages) = %d, want 48", len(SupportedLanguages))
	}
	for _, code := range []string{"auto", "am", "am-ET", "en-GB"} {
		if !Supported(code) {
			t.Errorf("Supported(%q) = false", code)
		}
	}
	if Supported("xx") {
		t.Error("Supported(xx) = true")
	}
	if Name("am-ET") != "Amharic" {
		t.Errorf("Name(am-ET) = %q", Name("am-ET"))
	}
}
