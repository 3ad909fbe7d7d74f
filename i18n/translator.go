package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "path" or "driver").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "source_failure":
			return "ストリーミングソースが失敗しました"
		case "pending_failure":
			return "保留中の値が失敗しました"
		case "malformed_transform":
			return "置換関数が不正な結果を返しました"
		case "encode_error":
			return "エンコードエラー"
		}
	default: // "en"
		switch code {
		case "source_failure":
			return "streaming source failed"
		case "pending_failure":
			return "pending value failed"
		case "malformed_transform":
			return "replacer returned a malformed result"
		case "encode_error":
			return "encode error"
		}
	}
	return code
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

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
