package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/louisbranch/gradebook/internal/services/grading/domain/machine"
)

var labelCatalog = mustBuildCatalog()

func mustBuildCatalog() *catalog.Builder {
	builder := catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))
	translations := map[language.Tag]map[string]string{
		language.AmericanEnglish: {
			LabelNone:       LabelNone,
			LabelOtherState: LabelOtherState,
			LabelExempt:     LabelExempt,
		},
		language.BrazilianPortuguese: {
			LabelNone:       LabelNone,
			LabelOtherState: "(outro estado)",
			LabelExempt:     "(dispensado)",
		},
	}
	for tag, messages := range translations {
		for key, value := range messages {
			if err := builder.SetString(tag, key, value); err != nil {
				panic(err)
			}
		}
	}
	return builder
}

// SupportedTags returns the locales with translated labels, fallback first.
func SupportedTags() []language.Tag {
	tags := []language.Tag{language.AmericanEnglish}
	for _, tag := range labelCatalog.Languages() {
		if tag != language.AmericanEnglish {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Printer returns a printer that knows the grade labels for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(labelCatalog))
}

// Localized renders HumanReadable through p, translating labels and using the
// locale's decimal separator.
func Localized(p *message.Printer, m *machine.Machine) string {
	switch m.Override() {
	case machine.OverrideUnavailable:
		return p.Sprintf(LabelOtherState)
	case machine.OverrideExempt:
		return p.Sprintf(LabelExempt)
	}
	value, ok := m.Percentage()
	if !ok {
		return p.Sprintf(LabelNone)
	}
	result := p.Sprintf("%.1f%%", value)
	if n := len(m.ValidPercentages()); n > 1 {
		result += p.Sprintf(" (/%d)", n)
	}
	return result
}
