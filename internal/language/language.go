// Package language normalizes the language mentions that show up in
// content requests. People write "spanish", "es", or "spa"
// interchangeably; intents carry one canonical form.
package language

import "strings"

// catalog lists each supported language as its ISO 639-1 code, display
// name, and the aliases that resolve to it: ISO 639-2 codes (both
// variants where two exist) and the English word form.
var catalog = []struct {
	iso2    string
	name    string
	aliases []string
}{
	{"en", "English", []string{"eng", "english"}},
	{"es", "Spanish", []string{"spa", "spanish"}},
	{"fr", "French", []string{"fra", "fre", "french"}},
	{"de", "German", []string{"deu", "ger", "german"}},
	{"it", "Italian", []string{"ita", "italian"}},
	{"pt", "Portuguese", []string{"por", "portuguese"}},
	{"ja", "Japanese", []string{"jpn", "japanese"}},
	{"ko", "Korean", []string{"kor", "korean"}},
	{"zh", "Chinese", []string{"zho", "chi", "chinese"}},
	{"ru", "Russian", []string{"rus", "russian"}},
	{"ar", "Arabic", []string{"ara", "arabic"}},
	{"hi", "Hindi", []string{"hin", "hindi"}},
	{"nl", "Dutch", []string{"nld", "dut", "dutch"}},
	{"pl", "Polish", []string{"pol", "polish"}},
	{"sv", "Swedish", []string{"swe", "swedish"}},
	{"da", "Danish", []string{"dan", "danish"}},
	{"no", "Norwegian", []string{"nor", "norwegian"}},
	{"fi", "Finnish", []string{"fin", "finnish"}},
}

var index = func() map[string]int {
	m := make(map[string]int, len(catalog)*3)
	for i, lang := range catalog {
		m[lang.iso2] = i
		for _, alias := range lang.aliases {
			m[alias] = i
		}
	}
	return m
}()

func resolve(value string) (int, bool) {
	i, ok := index[strings.ToLower(strings.TrimSpace(value))]
	return i, ok
}

// ToISO2 maps any recognized code or word form to its ISO 639-1 code.
// Unrecognized two-letter input passes through lowered on the
// assumption it already is a code; anything else yields "".
func ToISO2(value string) string {
	if i, ok := resolve(value); ok {
		return catalog[i].iso2
	}
	lowered := strings.ToLower(strings.TrimSpace(value))
	if len(lowered) == 2 {
		return lowered
	}
	return ""
}

// DisplayName maps any recognized code or word form to its English
// name. Empty input reports "Unknown"; unrecognized input echoes the
// uppercased code so callers still have something printable.
func DisplayName(value string) string {
	if i, ok := resolve(value); ok {
		return catalog[i].name
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Unknown"
	}
	return strings.ToUpper(trimmed)
}
