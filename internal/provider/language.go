package provider

import (
	"strings"

	"golang.org/x/text/language"
)

const DefaultLanguage = "en-US"

// NormalizeLanguage turns loose user input ("en", "pt_br", "fr-FR") into the
// region-qualified BCP 47 tag the catalog APIs expect. Unparseable input falls
// back to DefaultLanguage.
func NormalizeLanguage(lang string) string {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang == "" {
		return DefaultLanguage
	}

	tag, err := language.Parse(lang)
	if err != nil {
		return DefaultLanguage
	}

	base, _ := tag.Base()
	region, _ := tag.Region()
	return base.String() + "-" + region.String()
}

// UnderscoreLocale renders a normalized language as "en_US", the form used by
// the legacy catalog.
func UnderscoreLocale(lang string) string {
	return strings.ReplaceAll(NormalizeLanguage(lang), "-", "_")
}
