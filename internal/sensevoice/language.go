// Package sensevoice implements the offline SenseVoice recognizer: a
// single-shot CTC greedy decode over a whole utterance's frontend output.
package sensevoice

import "fmt"

// Language selects the SenseVoice decoding language, matching the numeric
// ids the model's "language" input expects.
type Language int32

const (
	LanguageAuto      Language = 0
	LanguageChinese   Language = 3
	LanguageEnglish   Language = 4
	LanguageCantonese Language = 7
	LanguageJapanese  Language = 11
	LanguageKorean    Language = 12
	LanguageNoSpeech  Language = 13
)

// textnormID is the fixed "textnorm" input value this recognizer always
// sends: SenseVoice's mode without inverse text normalization ("woitn").
const textnormID = 15

func (l Language) String() string {
	switch l {
	case LanguageAuto:
		return "auto"
	case LanguageChinese:
		return "zh"
	case LanguageEnglish:
		return "en"
	case LanguageCantonese:
		return "yue"
	case LanguageJapanese:
		return "ja"
	case LanguageKorean:
		return "ko"
	case LanguageNoSpeech:
		return "nospeech"
	default:
		return fmt.Sprintf("Language(%d)", int32(l))
	}
}

// ParseLanguage resolves a human-facing language name to its Language id.
func ParseLanguage(s string) (Language, error) {
	for _, l := range AllLanguages() {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("sensevoice: unknown language %q", s)
}

// AllLanguages lists every supported Language in declaration order, used
// to validate a user-chosen language string against the supported set.
func AllLanguages() []Language {
	return []Language{
		LanguageAuto, LanguageChinese, LanguageEnglish, LanguageCantonese,
		LanguageJapanese, LanguageKorean, LanguageNoSpeech,
	}
}
