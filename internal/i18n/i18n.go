// Package i18n renders user-facing toast and notification messages.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

//go:embed all:locales
var localeFS embed.FS

// Manager owns the message bundle and a localizer per loaded language.
type Manager struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	logger          *zap.Logger
	localizers      map[string]*i18n.Localizer
	availableLangs  []string
}

func NewManager(defaultLang string, logger *zap.Logger) (*Manager, error) {
	defaultTag, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("invalid default language tag %q: %w", defaultLang, err)
	}

	bundle := i18n.NewBundle(defaultTag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	m := &Manager{
		bundle:          bundle,
		defaultLanguage: defaultTag,
		logger:          logger.Named("i18n"),
		localizers:      make(map[string]*i18n.Localizer),
	}
	if err := m.loadTranslations(); err != nil {
		return nil, err
	}

	for _, langCode := range m.availableLangs {
		m.localizers[langCode] = i18n.NewLocalizer(m.bundle, langCode)
	}
	if _, ok := m.localizers[defaultLang]; !ok {
		m.localizers[defaultLang] = i18n.NewLocalizer(m.bundle, defaultLang)
		m.availableLangs = append(m.availableLangs, defaultLang)
	}

	m.logger.Info("i18n manager initialized",
		zap.String("default_language", defaultLang),
		zap.Strings("languages", m.availableLangs),
	)
	return m, nil
}

func (m *Manager) loadTranslations() error {
	files, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return fmt.Errorf("failed to read embedded locales directory: %w", err)
	}

	loaded := 0
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || filepath.Ext(name) != ".toml" {
			continue
		}
		if _, err := m.bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			m.logger.Warn("failed to load translation file", zap.String("file", name), zap.Error(err))
			continue
		}
		loaded++

		// Filenames look like active.en.toml; the language code is the
		// last dotted part before the extension.
		base := strings.TrimSuffix(name, ".toml")
		parts := strings.Split(base, ".")
		langCode := parts[len(parts)-1]
		if _, err := language.Parse(langCode); err != nil {
			m.logger.Warn("failed to parse language code from filename", zap.String("file", name), zap.Error(err))
			continue
		}
		m.availableLangs = append(m.availableLangs, langCode)
	}

	if loaded == 0 {
		return fmt.Errorf("no translation files loaded")
	}
	return nil
}

// T renders a message for the given language, falling back to the default
// language and finally to the key itself. args are key/value template pairs.
func (m *Manager) T(lang, key string, args ...interface{}) string {
	langCode := m.defaultLanguage.String()
	if lang != "" {
		langCode = lang
	}

	localizer, ok := m.localizers[langCode]
	if !ok {
		localizer = m.localizers[m.defaultLanguage.String()]
		if localizer == nil {
			return key
		}
	}

	cfg := &i18n.LocalizeConfig{MessageID: key}
	if len(args) > 0 {
		templateData := make(map[string]interface{}, len(args)/2)
		for i := 0; i+1 < len(args); i += 2 {
			name, ok := args[i].(string)
			if !ok {
				m.logger.Warn("template key is not a string", zap.String("message", key))
				continue
			}
			templateData[name] = args[i+1]
		}
		cfg.TemplateData = templateData
	}

	localized, err := localizer.Localize(cfg)
	if err != nil {
		return key
	}
	return localized
}

// Languages returns the loaded language codes.
func (m *Manager) Languages() []string {
	out := make([]string, len(m.availableLangs))
	copy(out, m.availableLangs)
	return out
}

// DefaultLanguage returns the configured fallback language code.
func (m *Manager) DefaultLanguage() string {
	return m.defaultLanguage.String()
}
