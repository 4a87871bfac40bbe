package i18n

import (
	"embed"
	"encoding/json"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLocale is used when no locale has been configured
const DefaultLocale = "en-US"

var (
	mu        sync.RWMutex
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	initOnce  sync.Once
)

// Init initializes the i18n bundle with the embedded locale files
func Init(lang string) error {
	// the fallback tag must match the tag of the English message file
	b := i18n.NewBundle(language.Make(DefaultLocale))
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, name := range []string{"locales/en-us.json", "locales/ko-kr.json"} {
		if _, err := b.LoadMessageFileFS(localeFS, name); err != nil {
			return err
		}
	}

	mu.Lock()
	bundle = b
	localizer = i18n.NewLocalizer(bundle, lang)
	mu.Unlock()
	return nil
}

// T translates a message by its ID with optional template data and plural count
func T(messageID string, templateData map[string]interface{}, pluralCount ...int) string {
	ensureInit()

	config := &i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	}
	if len(pluralCount) > 0 {
		config.PluralCount = pluralCount[0]
	}

	mu.RLock()
	l := localizer
	mu.RUnlock()

	msg, err := l.Localize(config)
	if err != nil {
		// Return message ID if translation fails
		return messageID
	}
	return msg
}

// SetLocale changes the current locale
func SetLocale(lang string) {
	ensureInit()

	mu.Lock()
	localizer = i18n.NewLocalizer(bundle, lang)
	mu.Unlock()
}

// ensureInit loads the default locale when Init was never called (tests, library use)
func ensureInit() {
	initOnce.Do(func() {
		mu.RLock()
		ready := localizer != nil
		mu.RUnlock()
		if !ready {
			_ = Init(DefaultLocale)
		}
	})
}
