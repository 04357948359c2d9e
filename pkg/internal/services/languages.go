package services

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

var (
	detector     lingua.LanguageDetector
	detectorOnce sync.Once
)

func DetectLanguage(content string) string {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English,
				lingua.German,
				lingua.French,
				lingua.Spanish,
				lingua.Portuguese,
				lingua.Italian,
				lingua.Dutch,
				lingua.Russian,
				lingua.Chinese,
				lingua.Japanese,
			).
			Build()
	})

	if language, ok := detector.DetectLanguageOf(content); ok {
		return strings.ToLower(language.IsoCode639_1().String())
	}
	return "unknown"
}
