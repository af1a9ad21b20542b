package validation

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys double as the English format strings.
const (
	msgRequired      = "%s must not be empty"
	msgNumeric       = "%s must be numeric"
	msgMaxLength     = "%s must not exceed %s characters"
	msgEmail         = "%s must be a valid email address"
	msgPhone         = "%s must be an 11-digit phone number"
	msgDetailsEmpty  = "details must contain at least one row"
	msgCellRequired  = "row %s: %s must not be empty"
	msgCellNumeric   = "row %s: %s must be numeric"
	msgOptionInvalid = "%s must be one of the listed options"
)

var supportedLanguages = []language.Tag{
	language.English,
	language.SimplifiedChinese,
}

var translations = map[language.Tag]map[string]string{
	language.SimplifiedChinese: {
		msgRequired:      "%s 不能为空",
		msgNumeric:       "%s 必须是数字",
		msgMaxLength:     "%s 不能超过 %s 个字符",
		msgEmail:         "%s 必须是有效的邮箱地址",
		msgPhone:         "%s 必须是11位手机号码",
		msgDetailsEmpty:  "明细至少需要一行",
		msgCellRequired:  "第 %s 行: %s 不能为空",
		msgCellNumeric:   "第 %s 行: %s 必须是数字",
		msgOptionInvalid: "%s 必须是列表中的选项",
	},
}

var messageCatalog = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range translations {
		for key, msg := range entries {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Translator renders a message key with its arguments.
type Translator interface {
	Translate(key string, args ...any) string
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(key string, args ...any) string

// Translate calls the underlying function.
func (fn TranslatorFunc) Translate(key string, args ...any) string {
	return fn(key, args...)
}

// NewTranslator returns a Translator for the closest supported language.
// English is used when nothing matches.
func NewTranslator(tag language.Tag) Translator {
	matcher := language.NewMatcher(supportedLanguages)
	_, idx, _ := matcher.Match(tag)
	printer := message.NewPrinter(supportedLanguages[idx], message.Catalog(messageCatalog))
	return TranslatorFunc(func(key string, args ...any) string {
		return printer.Sprintf(key, args...)
	})
}

// SupportedLocales lists the locales with bundled messages.
func SupportedLocales() []string {
	out := make([]string, len(supportedLanguages))
	for i, tag := range supportedLanguages {
		out[i] = tag.String()
	}
	return out
}
