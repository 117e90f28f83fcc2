package extract

import "strings"

// documentKeywords are tokens that show up on Russian registration papers
// (СТС/ПТС) far more often than on unrelated photos.
var documentKeywords = []string{
	"ПТС", "СТС", "VIN", "МОДЕЛЬ", "ГОС", "НОМЕР", "РЕГИСТРАЦИЯ", "PTS", "STS",
}

// Verdict is the coarse is-this-a-document gate applied before extraction
// results are trusted downstream.
type Verdict struct {
	IsDocument   bool `json:"is_document"`
	KeywordCount int  `json:"keyword_count"`
}

// Classify counts distinct keyword hits in the text. Two or more distinct
// keywords make the photo plausible as a registration document.
func Classify(text string) Verdict {
	upper := strings.ToUpper(text)

	count := 0
	for _, keyword := range documentKeywords {
		if strings.Contains(upper, keyword) {
			count++
		}
	}

	return Verdict{
		IsDocument:   count >= 2,
		KeywordCount: count,
	}
}
