package domain

// Encoding selects the wire charset for a session.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingShiftJIS
	EncodingCP437
	EncodingPETSCII
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "UTF-8"
	case EncodingShiftJIS:
		return "ShiftJIS"
	case EncodingCP437:
		return "CP437"
	case EncodingPETSCII:
		return "PETSCII"
	default:
		return "UTF-8"
	}
}

// Language selects the i18n catalog for a session.
type Language int

const (
	LanguageEnglishUTF8 Language = iota
	LanguageJapaneseShiftJIS
	LanguageJapaneseUTF8
)

// Encoding returns the wire encoding implied by a language selection.
func (l Language) Encoding() Encoding {
	switch l {
	case LanguageJapaneseShiftJIS:
		return EncodingShiftJIS
	default:
		return EncodingUTF8
	}
}

func (l Language) String() string {
	switch l {
	case LanguageEnglishUTF8:
		return "English-UTF8"
	case LanguageJapaneseShiftJIS:
		return "Japanese-ShiftJIS"
	case LanguageJapaneseUTF8:
		return "Japanese-UTF8"
	default:
		return "English-UTF8"
	}
}
