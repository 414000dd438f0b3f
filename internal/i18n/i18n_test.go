package i18n

import (
	"strings"
	"testing"
)

func TestNewTranslator(t *testing.T) {
	translator := NewTranslator(LanguageFrench)

	if translator == nil {
		t.Fatal("Expected translator to be created")
	}

	if translator.GetLanguage() != LanguageFrench {
		t.Errorf("Expected language to be fr, got %s", translator.GetLanguage())
	}
}

func TestLoadTranslations(t *testing.T) {
	translator := NewTranslator(LanguageFrench)

	frData := []byte(`{
		"menu.settings": "Paramètres...",
		"menu.quit": "Quitter"
	}`)

	err := translator.LoadTranslations(LanguageFrench, frData)
	if err != nil {
		t.Fatalf("Failed to load translations: %v", err)
	}

	text := translator.Translate("menu.settings")
	if text != "Paramètres..." {
		t.Errorf("Expected 'Paramètres...', got '%s'", text)
	}

	if err := translator.LoadTranslations(LanguageFrench, []byte("{")); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestSetLanguage(t *testing.T) {
	translator := NewTranslator(LanguageEnglish)

	translator.SetLanguage(LanguageGerman)

	if translator.GetLanguage() != LanguageGerman {
		t.Errorf("Expected language to be de, got %s", translator.GetLanguage())
	}
}

func TestFallbackToEnglish(t *testing.T) {
	translator := NewTranslator(LanguageSpanish)
	translator.LoadTranslations(LanguageEnglish, []byte(`{"menu.quit": "Quit"}`))
	translator.LoadTranslations(LanguageSpanish, []byte(`{}`))

	if text := translator.Translate("menu.quit"); text != "Quit" {
		t.Errorf("Expected English fallback 'Quit', got '%s'", text)
	}

	if text := translator.Translate("missing.key"); text != "missing.key" {
		t.Errorf("Expected key itself for missing translation, got '%s'", text)
	}
}

func TestTranslateWithFormat(t *testing.T) {
	translator := NewTranslator(LanguageEnglish)
	translator.LoadTranslations(LanguageEnglish, []byte(`{"menu.usage": "This month: {usage}"}`))

	text := translator.TranslateWithFormat("menu.usage", map[string]string{"usage": "3 req"})
	if text != "This month: 3 req" {
		t.Errorf("Unexpected formatted text: %q", text)
	}
}

func TestEmbeddedLocalesAreComplete(t *testing.T) {
	translator, err := NewDefaultTranslator(LanguageEnglish)
	if err != nil {
		t.Fatalf("Failed to load embedded locales: %v", err)
	}

	english := translator.GetAllTranslations()
	for _, lang := range GetSupportedLanguages() {
		translator.SetLanguage(lang)
		all := translator.GetAllTranslations()
		for key := range english {
			if _, ok := all[key]; !ok {
				t.Errorf("Locale %s is missing key %s", lang, key)
			}
		}
	}
}

func TestBuiltinPromptsHavePlaceholder(t *testing.T) {
	translator, err := NewDefaultTranslator(LanguageEnglish)
	if err != nil {
		t.Fatalf("Failed to load embedded locales: %v", err)
	}

	for _, lang := range GetSupportedLanguages() {
		for _, action := range []string{"correct", "format", "reformulate", "professional", "translate"} {
			prompt, ok := translator.Prompt(action, string(lang))
			if !ok {
				t.Errorf("Missing %s prompt for %s", action, lang)
				continue
			}
			if strings.Count(prompt, "{text}") != 1 {
				t.Errorf("Prompt %s/%s must contain {text} exactly once", lang, action)
			}
		}
	}

	if _, ok := translator.Prompt("unknown", "fr"); ok {
		t.Error("Expected no prompt for unknown action")
	}

	// unsupported language falls back to English
	en, _ := translator.Prompt("correct", "en")
	it, ok := translator.Prompt("correct", "it")
	if !ok || it != en {
		t.Error("Expected English prompt for unsupported language")
	}
}

func TestValidateLanguage(t *testing.T) {
	for _, lang := range []string{"fr", "en", "es", "de"} {
		if !ValidateLanguage(lang) {
			t.Errorf("Expected %s to be supported", lang)
		}
	}
	if ValidateLanguage("ja") {
		t.Error("Expected ja to be unsupported")
	}
	if LanguageName(LanguageFrench) != "Français" {
		t.Errorf("Unexpected display name %q", LanguageName(LanguageFrench))
	}
}

func TestActionLabel(t *testing.T) {
	translator, _ := NewDefaultTranslator(LanguageFrench)
	if got := translator.ActionLabel("correct"); got != "Corriger" {
		t.Errorf("Expected 'Corriger', got %q", got)
	}
	if got := translator.ActionLabel("my_custom"); got != "my_custom" {
		t.Errorf("Expected id for unknown action, got %q", got)
	}
}
