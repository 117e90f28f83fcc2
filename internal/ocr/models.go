package ocr

// FeatureTextDetection is the only analysis feature the service requests
// today. The provider supports more modes; the request type keeps the field
// open for them.
const FeatureTextDetection = "TEXT_DETECTION"

type batchAnalyzeRequest struct {
	FolderID     string        `json:"folderId"`
	AnalyzeSpecs []analyzeSpec `json:"analyzeSpecs"`
}

type analyzeSpec struct {
	Content  string        `json:"content"`
	Features []featureSpec `json:"features"`
}

type featureSpec struct {
	Type                string               `json:"type"`
	TextDetectionConfig *textDetectionConfig `json:"textDetectionConfig,omitempty"`
}

type textDetectionConfig struct {
	LanguageCodes []string `json:"languageCodes"`
}

// Result is the raw recognition tree as the provider emits it. It is held
// only for the duration of one pipeline run and is never persisted beyond
// the optional audit copy of the source image.
type Result struct {
	Results []SpecResult `json:"results"`
}

type SpecResult struct {
	Results []FeatureResult `json:"results"`
	Error   *providerStatus `json:"error,omitempty"`
}

type FeatureResult struct {
	TextDetection *TextAnnotation `json:"textDetection,omitempty"`
}

type TextAnnotation struct {
	Pages []Page `json:"pages"`
}

type Page struct {
	Blocks []Block `json:"blocks"`
}

type Block struct {
	Lines []Line `json:"lines"`
}

type Line struct {
	Words []Word `json:"words"`
}

type Word struct {
	Text string `json:"text"`
}

type providerStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
