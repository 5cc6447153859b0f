package translator

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"taskflow/pkg/tasks"
)

//go:embed translation/*.toml
var translations embed.FS

var Translator *i18n.Bundle

const (
	LanguageEn = "en"
	LanguageFr = "fr"
)

// InitTranslator loads the embedded message files into Translator
func InitTranslator() error {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(translations, "translation/*.toml")
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(translations, f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	Translator = bundle
	return nil
}

// Localizer renders messages in one language, falling back to English
type Localizer struct {
	l *i18n.Localizer
}

// NewLocalizer returns a localizer for lang. InitTranslator must have run.
func NewLocalizer(lang string) *Localizer {
	return &Localizer{l: i18n.NewLocalizer(Translator, lang, LanguageEn)}
}

// Text renders the message id with data, or returns id when it is unknown
func (l *Localizer) Text(id string, data map[string]interface{}) string {
	msg, err := l.l.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		zap.L().Warn("translation not found", zap.String("message_id", id), zap.Error(err))
		return id
	}
	return msg
}

// DisplayMessage renders a due message; MessageNone renders as ""
func (l *Localizer) DisplayMessage(msg tasks.DisplayMessage) string {
	if msg.Kind == tasks.MessageNone {
		return ""
	}
	data := map[string]interface{}{}
	if msg.Date != nil {
		data["Date"] = msg.Date.String()
	}
	return l.Text(msg.Kind.String(), data)
}

// Frequency renders a task's repeat rule
func (l *Localizer) Frequency(task tasks.Task) string {
	data := map[string]interface{}{}
	if task.CustomFrequencyDays != nil {
		data["Days"] = *task.CustomFrequencyDays
	}
	return l.Text("frequency_"+string(task.Frequency), data)
}
