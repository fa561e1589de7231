package i18n

// Translator retrieves localized messages for constraint keywords. data
// provides optional metadata to embed in the message (for example "min" or
// "got").
type Translator interface {
	Message(keyword string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(keyword string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch keyword {
		case "required":
			return "必須プロパティが不足しています"
		case "type":
			return "型が不正です"
		case "minLength":
			return "短すぎます"
		case "maxLength":
			return "長すぎます"
		case "pattern":
			return "パターンに一致しません"
		case "enum":
			return "許可されていない値です"
		case "minimum":
			return "小さすぎます"
		case "maximum":
			return "大きすぎます"
		case "minItems":
			return "要素が少なすぎます"
		case "maxItems":
			return "要素が多すぎます"
		case "format":
			return "形式が不正です"
		case "additionalProperties":
			return "未知のキーです"
		}
	default: // "en"
		switch keyword {
		case "required":
			return "required property missing"
		case "type":
			return "invalid type"
		case "minLength":
			return "too short"
		case "maxLength":
			return "too long"
		case "pattern":
			return "does not match pattern"
		case "enum":
			return "value not allowed"
		case "minimum":
			return "too small"
		case "maximum":
			return "too big"
		case "minItems":
			return "too few items"
		case "maxItems":
			return "too many items"
		case "format":
			return "invalid format"
		case "additionalProperties":
			return "unknown key"
		}
	}
	return keyword
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given keyword using the current Translator.
func T(keyword string, data map[string]string) string {
	return currentTranslator.Message(keyword, data)
}
