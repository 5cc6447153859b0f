package translator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/pkg/tasks"
	"taskflow/pkg/translator"
)

func TestMain(m *testing.M) {
	if err := translator.InitTranslator(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestDisplayMessage_English(t *testing.T) {
	l := translator.NewLocalizer(translator.LanguageEn)
	d := tasks.MustParseDate("2024-03-12")

	assert.Equal(t, "Due today", l.DisplayMessage(tasks.DisplayMessage{Kind: tasks.MessageDueToday}))
	assert.Equal(t, "Due tomorrow", l.DisplayMessage(tasks.DisplayMessage{Kind: tasks.MessageDueTomorrow}))
	assert.Equal(t, "Scheduled for 2024-03-12", l.DisplayMessage(tasks.DisplayMessage{Kind: tasks.MessageScheduledFor, Date: &d}))
	assert.Equal(t, "Completed on 2024-03-12", l.DisplayMessage(tasks.DisplayMessage{Kind: tasks.MessageCompletedOn, Date: &d}))
	assert.Empty(t, l.DisplayMessage(tasks.DisplayMessage{Kind: tasks.MessageNone}))
}

func TestDisplayMessage_French(t *testing.T) {
	l := translator.NewLocalizer(translator.LanguageFr)
	assert.Equal(t, "À faire demain", l.DisplayMessage(tasks.DisplayMessage{Kind: tasks.MessageDueTomorrow}))
}

func TestLocalizer_FallsBackToEnglish(t *testing.T) {
	l := translator.NewLocalizer("de")
	assert.Equal(t, "Due today", l.DisplayMessage(tasks.DisplayMessage{Kind: tasks.MessageDueToday}))
}

func TestLocalizer_UnknownIDReturnsID(t *testing.T) {
	l := translator.NewLocalizer(translator.LanguageEn)
	assert.Equal(t, "no_such_message", l.Text("no_such_message", nil))
}

func TestFrequency(t *testing.T) {
	l := translator.NewLocalizer(translator.LanguageEn)
	days := 3

	assert.Equal(t, "Weekly", l.Frequency(tasks.Task{Frequency: tasks.Weekly}))
	assert.Equal(t, "Every 3 days", l.Frequency(tasks.Task{Frequency: tasks.Custom, CustomFrequencyDays: &days}))
	require.NotNil(t, translator.Translator)
}
