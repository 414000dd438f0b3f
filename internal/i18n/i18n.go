package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

//go:embed locales/*.json
var localeFS embed.FS

// Language represents a supported language
type Language string

const (
	LanguageFrench  Language = "fr"
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
	LanguageGerman  Language = "de"
)

// languageNames are the display names of the supported languages
var languageNames = map[Language]string{
	LanguageFrench:  "Français",
	LanguageEnglish: "English",
	LanguageSpanish: "Español",
	LanguageGerman:  "Deutsch",
}

// Translator manages translations for the application
type Translator struct {
	currentLanguage Language
	translations    map[Language]map[string]string
	mu              sync.RWMutex
}

// NewTranslator creates a new translator with default language
func NewTranslator(language Language) *Translator {
	return &Translator{
		currentLanguage: language,
		translations:    make(map[Language]map[string]string),
	}
}

// NewDefaultTranslator creates a translator with the built-in locales loaded
func NewDefaultTranslator(language Language) (*Translator, error) {
	t := NewTranslator(language)
	if err := t.LoadEmbedded(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadEmbedded loads the locales compiled into the binary
func (t *Translator) LoadEmbedded() error {
	for _, lang := range GetSupportedLanguages() {
		data, err := localeFS.ReadFile("locales/" + string(lang) + ".json")
		if err != nil {
			return fmt.Errorf("failed to read embedded locale %s: %w", lang, err)
		}
		if err := t.LoadTranslations(lang, data); err != nil {
			return fmt.Errorf("locale %s: %w", lang, err)
		}
	}
	return nil
}

// LoadTranslations loads translations from JSON data
func (t *Translator) LoadTranslations(language Language, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var translations map[string]string
	if err := json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("failed to unmarshal translations: %w", err)
	}

	t.translations[language] = translations
	return nil
}

// LoadTranslationsFromFile loads translations from a JSON file
func (t *Translator) LoadTranslationsFromFile(language Language, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read translation file: %w", err)
	}

	return t.LoadTranslations(language, data)
}

// SetLanguage sets the current language
func (t *Translator) SetLanguage(language Language) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentLanguage = language
}

// GetLanguage returns the current language
func (t *Translator) GetLanguage() Language {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.currentLanguage
}

// Translate translates a key in the current language
func (t *Translator) Translate(key string) string {
	text, ok := t.Lookup(t.GetLanguage(), key)
	if !ok {
		// Return key itself if no translation found
		return key
	}
	return text
}

// Lookup translates a key in the given language, falling back to English
func (t *Translator) Lookup(language Language, key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if translations, ok := t.translations[language]; ok {
		if text, ok := translations[key]; ok {
			return text, true
		}
	}

	if language != LanguageEnglish {
		if translations, ok := t.translations[LanguageEnglish]; ok {
			if text, ok := translations[key]; ok {
				return text, true
			}
		}
	}

	return "", false
}

// TranslateWithFormat translates a key and formats with parameters
func (t *Translator) TranslateWithFormat(key string, params map[string]string) string {
	text := t.Translate(key)

	// Simple string replacement for parameters
	for param, value := range params {
		placeholder := fmt.Sprintf("{%s}", param)
		text = strings.ReplaceAll(text, placeholder, value)
	}

	return text
}

// Prompt returns the built-in prompt template of an action in a language
func (t *Translator) Prompt(action, language string) (string, bool) {
	return t.Lookup(Language(language), "prompt."+action)
}

// ActionLabel returns the display label of an action
func (t *Translator) ActionLabel(action string) string {
	if text, ok := t.Lookup(t.GetLanguage(), "action."+action); ok {
		return text
	}
	return action
}

// GetAllTranslations returns all translations for the current language
func (t *Translator) GetAllTranslations() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if translations, ok := t.translations[t.currentLanguage]; ok {
		// Return a copy to prevent external modifications
		result := make(map[string]string)
		for k, v := range translations {
			result[k] = v
		}
		return result
	}

	return make(map[string]string)
}

// HasTranslation checks if a translation key exists
func (t *Translator) HasTranslation(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if translations, ok := t.translations[t.currentLanguage]; ok {
		_, ok := translations[key]
		return ok
	}

	return false
}

// ValidateLanguage validates that a language is supported
func ValidateLanguage(language string) bool {
	_, ok := languageNames[Language(language)]
	return ok
}

// LanguageName returns the display name of a language
func LanguageName(language Language) string {
	if name, ok := languageNames[language]; ok {
		return name
	}
	return string(language)
}

// GetSupportedLanguages returns a list of supported languages
func GetSupportedLanguages() []Language {
	return []Language{LanguageFrench, LanguageEnglish, LanguageSpanish, LanguageGerman}
}
