package metadata

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/dtnitsch/email-reply-parser/models"
	"github.com/dtnitsch/email-reply-parser/pkg/htmldoc"
)

// minLanguageText is the shortest reply, in runes, worth classifying.
const minLanguageText = 12

// LanguageDetector guesses the language of a reply. It is safe for
// concurrent use once built.
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

// NewLanguageDetector builds a detector limited to the given ISO 639-1 codes.
func NewLanguageDetector(codes []string) (*LanguageDetector, error) {
	var languages []lingua.Language
	for _, code := range codes {
		lang := lingua.GetLanguageFromIsoCode639_1(lingua.GetIsoCode639_1FromValue(strings.ToUpper(strings.TrimSpace(code))))
		if lang == lingua.Unknown {
			return nil, fmt.Errorf("unsupported language code %q", code)
		}
		languages = append(languages, lang)
	}
	if len(languages) < 2 {
		return nil, fmt.Errorf("language detection needs at least 2 languages, got %d", len(languages))
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		WithLowAccuracyMode().
		Build()
	return &LanguageDetector{detector: detector}, nil
}

// Detect returns the most likely language of text, or nil when text is too
// short or no language is likely.
func (d *LanguageDetector) Detect(text string) *models.Language {
	if d == nil || htmldoc.TextLength(text) < minLanguageText {
		return nil
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return nil
	}
	return &models.Language{
		Code:       strings.ToLower(lang.IsoCode639_1().String()),
		Confidence: d.detector.ComputeLanguageConfidence(text, lang),
	}
}
