package ocr

import "strings"

// Flatten renders the recognition tree into a single newline-delimited
// string, visiting spec results, pages, blocks, lines and words in provider
// order. A tree with no words yields an empty string, which is a valid
// outcome, not an error.
func Flatten(result *Result) string {
	if result == nil {
		return ""
	}

	var sb strings.Builder
	for _, specResult := range result.Results {
		for _, featureResult := range specResult.Results {
			if featureResult.TextDetection == nil {
				continue
			}
			for _, page := range featureResult.TextDetection.Pages {
				for _, block := range page.Blocks {
					for _, line := range block.Lines {
						var lb strings.Builder
						for _, word := range line.Words {
							lb.WriteString(word.Text)
							lb.WriteString(" ")
						}
						sb.WriteString(strings.TrimRight(lb.String(), " "))
						sb.WriteString("\n")
					}
				}
			}
		}
	}

	return strings.TrimSpace(sb.String())
}
