package analysis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vdmitriev/vregscan/internal/extract"
	"github.com/vdmitriev/vregscan/internal/logger"
	"github.com/vdmitriev/vregscan/internal/models"
	"github.com/vdmitriev/vregscan/internal/ocr"
)

// Recognizer is the OCR provider surface. Implemented by ocr.Client.
type Recognizer interface {
	Recognize(ctx context.Context, imageData []byte, feature string) (*ocr.Result, error)
}

// requiredFieldCount is the number of document fields the quality score is
// measured against.
const requiredFieldCount = 5

// DocumentResult is what a document analysis returns to the caller, even
// when extraction was partial or empty.
type DocumentResult struct {
	RecordID int             `json:"record_id,omitempty"`
	Fields   extract.Fields  `json:"fields"`
	Verdict  extract.Verdict `json:"verdict"`
	RawText  string          `json:"raw_text"`
}

// PanelResult is the instrument-panel counterpart.
type PanelResult struct {
	RecordID       int  `json:"record_id,omitempty"`
	Odometer       *int `json:"odometer,omitempty"`
	ContainsDigits bool `json:"contains_digits"`
}

// Service runs the recognition pipeline: OCR call, flattening, heuristic
// extraction, classification, persistence. One run per submitted image;
// runs are independent and may execute concurrently.
type Service struct {
	recognizer Recognizer
	store      *Store
}

func NewService(recognizer Recognizer, store *Store) *Service {
	return &Service{
		recognizer: recognizer,
		store:      store,
	}
}

// AnalyzeDocument runs the registration-document pipeline. Parsing never
// fails: missing fields are simply absent from the result. Only OCR
// configuration and transport problems surface as errors, and those still
// count as failed attempts in the daily stats.
func (s *Service) AnalyzeDocument(ctx context.Context, assetID string, imageData []byte) (*DocumentResult, error) {
	raw, err := s.recognizer.Recognize(ctx, imageData, ocr.FeatureTextDetection)
	if err != nil {
		s.store.RecordFailedAttempt(ctx)
		return nil, err
	}

	text := ocr.Flatten(raw)
	verdict := extract.Classify(text)
	fields := extract.ParseDocumentFields(text)

	var score *float64
	if verdict.IsDocument {
		v := float64(fields.Count()) / requiredFieldCount
		score = &v
	}

	rec := &models.AnalysisRecord{
		AssetID:          assetID,
		DocumentType:     models.DocTypeRegistration,
		Fields:           marshalFields(fields),
		QualityLabel:     qualityLabel(score),
		QualityScore:     score,
		MissingFields:    fields.Missing(),
		RegistrationDate: parseRegistrationDate(text),
		CreatedAt:        time.Now(),
	}

	id := s.store.Save(ctx, rec, verdict.IsDocument, score)

	logger.WithFields(logrus.Fields{
		"asset_id":      assetID,
		"record_id":     id,
		"is_document":   verdict.IsDocument,
		"keyword_count": verdict.KeywordCount,
		"fields_found":  fields.Count(),
	}).Info("document analysis completed")

	return &DocumentResult{
		RecordID: int(id),
		Fields:   fields,
		Verdict:  verdict,
		RawText:  text,
	}, nil
}

// AnalyzeInstrumentPanel runs the odometer pipeline. An unreadable panel
// yields an absent odometer, not an error.
func (s *Service) AnalyzeInstrumentPanel(ctx context.Context, assetID string, imageData []byte) (*PanelResult, error) {
	raw, err := s.recognizer.Recognize(ctx, imageData, ocr.FeatureTextDetection)
	if err != nil {
		s.store.RecordFailedAttempt(ctx)
		return nil, err
	}

	text := ocr.Flatten(raw)
	odometer := extract.ParseOdometer(text)

	var score *float64
	var motohours *float64
	missing := []string{"odometer"}
	if odometer != nil {
		v := 1.0
		score = &v
		m := float64(*odometer)
		motohours = &m
		missing = []string{}
	}

	rec := &models.AnalysisRecord{
		AssetID:       assetID,
		DocumentType:  models.DocTypeInstrumentPanel,
		Fields:        marshalOdometer(odometer),
		QualityLabel:  qualityLabel(score),
		QualityScore:  score,
		MissingFields: missing,
		Motohours:     motohours,
		CreatedAt:     time.Now(),
	}

	id := s.store.Save(ctx, rec, odometer != nil, score)

	logger.WithFields(logrus.Fields{
		"asset_id":       assetID,
		"record_id":      id,
		"odometer_found": odometer != nil,
	}).Info("instrument panel analysis completed")

	return &PanelResult{
		RecordID:       int(id),
		Odometer:       odometer,
		ContainsDigits: extract.ContainsDigits(text),
	}, nil
}

func qualityLabel(score *float64) string {
	switch {
	case score == nil:
		return models.QualityPoor
	case *score >= 0.8:
		return models.QualityGood
	case *score >= 0.4:
		return models.QualityPartial
	default:
		return models.QualityPoor
	}
}

func parseRegistrationDate(text string) *time.Time {
	raw := extract.ParseFirstDate(text)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("02.01.2006", raw)
	if err != nil {
		return nil
	}
	return &t
}

func marshalFields(fields extract.Fields) json.RawMessage {
	data, err := json.Marshal(fields)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}

func marshalOdometer(odometer *int) json.RawMessage {
	if odometer == nil {
		return json.RawMessage(`{}`)
	}
	data, err := json.Marshal(map[string]int{"odometer": *odometer})
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}
