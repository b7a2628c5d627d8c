package i18n

import (
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for validation error codes.
// data provides optional metadata to embed in the message (for example,
// "expected", "got" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":    "expected {expected}, received {got}",
		"invalid_literal": "expected literal {expected}",
		"invalid_enum":    "expected one of {expected}",
		"invalid_format":  "expected {expected}",
		"invalid_length":  "expected {expected} elements, received {got}",
		"invalid_key":     "invalid key {key}",
		"invalid_value":   "invalid value",
		"out_of_range":    "number {got} is out of range",
		"required":        "required",
		"no_alternative":  "value did not match any alternative",
		"duplicate_key":   "duplicate key {key}",
		"parse_error":     "parse error",
		"truncated":       "input exceeds {expected} bytes",
	},
	"ja": {
		"invalid_type":    "{expected} が必要ですが {got} が渡されました",
		"invalid_literal": "リテラル {expected} が必要です",
		"invalid_enum":    "{expected} のいずれかが必要です",
		"invalid_format":  "{expected} 形式が必要です",
		"invalid_length":  "要素数は {expected} が必要ですが {got} でした",
		"invalid_key":     "キー {key} が不正です",
		"invalid_value":   "値が不正です",
		"out_of_range":    "数値 {got} は範囲外です",
		"required":        "必須項目です",
		"no_alternative":  "どの候補にも一致しません",
		"duplicate_key":   "キー {key} が重複しています",
		"parse_error":     "解析エラー",
		"truncated":       "入力が {expected} バイトを超えています",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

type holder struct{ tr Translator }

var current atomic.Pointer[holder]

func init() { current.Store(&holder{tr: dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	current.Store(&holder{tr: dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(&holder{tr: tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return current.Load().tr.Message(code, data) }
