package lang

// Language is a selectable transcript language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportedLanguages are the preferences a caller may request.
// "auto" lets the resolver choose the original-language track.
var SupportedLanguages = []Language{
	{"auto", "Auto-detect"},
	{"en", "English"},
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
	{"pt", "Portuguese"},
	{"ru", "Russian"},
	{"it", "Italian"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"zh", "Chinese"},
	{"ar", "Arabic"},
	{"hi", "Hindi"},
	{"bn", "Bengali"},
	{"ur", "Urdu"},
	{"fa", "Persian"},
	{"th", "Thai"},
	{"vi", "Vietnamese"},
	{"tr", "Turkish"},
	{"he", "Hebrew"},
	{"am", "Amharic"},
	{"sw", "Swahili"},
	{"rw", "Kinyarwanda"},
	{"ti", "Tigrinya"},
	{"om", "Oromo"},
	{"so", "Somali"},
	{"ha", "Hausa"},
	{"yo", "Yoruba"},
	{"ig", "Igbo"},
	{"ta", "Tamil"},
	{"te", "Telugu"},
	{"ml", "Malayalam"},
	{"kn", "Kannada"},
	{"gu", "Gujarati"},
	{"mr", "Marathi"},
	{"ne", "Nepali"},
	{"si", "Sinhala"},
	{"my", "Burmese"},
	{"km", "Khmer"},
	{"lo", "Lao"},
	{"ka", "Georgian"},
	{"hy", "Armenian"},
	{"az", "Azerbaijani"},
	{"kk", "Kazakh"},
	{"ky", "Kyrgyz"},
	{"uz", "Uzbek"},
	{"tg", "Tajik"},
	{"mn", "Mongolian"},
}

// Name returns the display name for code, or code itself when unknown.
func Name(code string) string {
	b := Base(code)
	for _, l := range SupportedLanguages {
		if l.Code == b {
			return l.Name
		}
	}
	return code
}

// Supported reports whether code (or its base language) is selectable.
func Supported(code string) bool {
	if code == "auto" {
		return true
	}
	b := Base(code)
	for _, l := range SupportedLanguages {
		if l.Code == b {
			return true
		}
	}
	return false
}
