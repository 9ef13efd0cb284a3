package i18n

import "sync"

// Message keys used by the diagnostic reporter.
const (
	UnexpectedData  = "unexpected_data"
	UnexpectedPath  = "unexpected_path"
	UnexpectedValue = "unexpected_value"
	ExpectingTypes  = "expecting_types"
	AcceptedPaths   = "accepted_paths"
	InvalidJSON     = "invalid_json"
	PrematureEOF    = "premature_eof"
	DuplicateKey    = "duplicate_key"
	ParseError      = "parse_error"
	Truncated       = "truncated"
)

// Translator retrieves localized diagnostic headers.
// data provides optional metadata to embed in the message (for example,
// "path" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case UnexpectedData:
			return "パスに対して想定外のデータです"
		case UnexpectedPath:
			return "想定外のパスです --"
		case UnexpectedValue:
			return "想定外の JSON 値です"
		case ExpectingTypes:
			return "次のいずれかのデータ型が必要です --"
		case AcceptedPaths:
			return "受け付けるパス --"
		case InvalidJSON:
			return "不正な JSON です"
		case PrematureEOF:
			return "入力が途中で終わっています"
		case DuplicateKey:
			return "キーが重複しています"
		case ParseError:
			return "解析エラー"
		case Truncated:
			return "打ち切られました"
		}
	default: // "en"
		switch code {
		case UnexpectedData:
			return "unexpected data for path"
		case UnexpectedPath:
			return "unexpected path --"
		case UnexpectedValue:
			return "unexpected JSON value"
		case ExpectingTypes:
			return "expecting one of the following data types --"
		case AcceptedPaths:
			return "accepted paths --"
		case InvalidJSON:
			return "invalid json"
		case PrematureEOF:
			return "premature EOF"
		case DuplicateKey:
			return "duplicate key"
		case ParseError:
			return "parse error"
		case Truncated:
			return "truncated"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
