package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/vdmitriev/vregscan/internal/models"
	"github.com/vdmitriev/vregscan/internal/ocr"
)

type mockRecognizer struct {
	result *ocr.Result
	err    error
}

func (m *mockRecognizer) Recognize(ctx context.Context, imageData []byte, feature string) (*ocr.Result, error) {
	return m.result, m.err
}

type mockRecordRepo struct {
	created   []*models.AnalysisRecord
	createErr error
	latest    *models.AnalysisRecord
}

func (m *mockRecordRepo) Create(ctx context.Context, rec *models.AnalysisRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	rec.ID = int64(len(m.created) + 1)
	m.created = append(m.created, rec)
	return nil
}

func (m *mockRecordRepo) LatestForAsset(ctx context.Context, assetID string) (*models.AnalysisRecord, error) {
	return m.latest, nil
}

type outcome struct {
	success bool
	score   *float64
}

type mockStats struct {
	outcomes []outcome
}

func (m *mockStats) RecordOutcome(ctx context.Context, day time.Time, success bool, score *float64) error {
	m.outcomes = append(m.outcomes, outcome{success: success, score: score})
	return nil
}

func textResult(lines ...[]string) *ocr.Result {
	var treeLines []ocr.Line
	for _, words := range lines {
		line := ocr.Line{}
		for _, w := range words {
			line.Words = append(line.Words, ocr.Word{Text: w})
		}
		treeLines = append(treeLines, line)
	}

	return &ocr.Result{
		Results: []ocr.SpecResult{
			{
				Results: []ocr.FeatureResult{
					{
						TextDetection: &ocr.TextAnnotation{
							Pages: []ocr.Page{
								{Blocks: []ocr.Block{{Lines: treeLines}}},
							},
						},
					},
				},
			},
		},
	}
}

func TestAnalyzeDocument(t *testing.T) {
	recognizer := &mockRecognizer{
		result: textResult(
			[]string{"СТС", "77НН123456"},
			[]string{"VIN:", "X9F12345678901234"},
			[]string{"Марка:", "Камаз"},
			[]string{"Модель:", "6520"},
		),
	}
	repo := &mockRecordRepo{}
	stats := &mockStats{}
	service := NewService(recognizer, NewStore(repo, stats))

	result, err := service.AnalyzeDocument(context.Background(), "asset-1", []byte("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Fields.VIN != "X9F12345678901234" {
		t.Errorf("expected vin to be extracted, got %q", result.Fields.VIN)
	}
	if result.Fields.Brand != "Камаз" || result.Fields.Model != "6520" {
		t.Errorf("unexpected brand/model: %q / %q", result.Fields.Brand, result.Fields.Model)
	}
	if !result.Verdict.IsDocument {
		t.Error("expected document verdict to be true")
	}
	if result.RawText == "" {
		t.Error("expected raw text in the result")
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(repo.created))
	}
	rec := repo.created[0]
	if rec.AssetID != "asset-1" {
		t.Errorf("unexpected asset id: %q", rec.AssetID)
	}
	if rec.DocumentType != models.DocTypeRegistration {
		t.Errorf("unexpected document type: %q", rec.DocumentType)
	}
	if rec.QualityScore == nil {
		t.Fatal("expected quality score")
	}
	// vin, brand, model found out of 5 required fields
	if *rec.QualityScore != 0.6 {
		t.Errorf("expected quality score 0.6, got %f", *rec.QualityScore)
	}
	if rec.QualityLabel != models.QualityPartial {
		t.Errorf("expected partial label, got %q", rec.QualityLabel)
	}

	var fields map[string]string
	if err := json.Unmarshal(rec.Fields, &fields); err != nil {
		t.Fatalf("record fields are not valid JSON: %v", err)
	}
	if fields["vin"] != "X9F12345678901234" {
		t.Errorf("expected vin in serialized fields, got %v", fields)
	}

	if len(stats.outcomes) != 1 {
		t.Fatalf("expected exactly 1 stats outcome, got %d", len(stats.outcomes))
	}
	if !stats.outcomes[0].success {
		t.Error("expected a successful outcome")
	}
}

func TestAnalyzeDocumentNotADocument(t *testing.T) {
	recognizer := &mockRecognizer{result: textResult([]string{"кот", "на", "диване"})}
	repo := &mockRecordRepo{}
	stats := &mockStats{}
	service := NewService(recognizer, NewStore(repo, stats))

	result, err := service.AnalyzeDocument(context.Background(), "asset-1", []byte("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Verdict.IsDocument {
		t.Error("expected verdict to be false")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected record persisted even for non-documents, got %d", len(repo.created))
	}
	if repo.created[0].QualityScore != nil {
		t.Error("expected absent quality score for non-document")
	}
	if len(stats.outcomes) != 1 || stats.outcomes[0].success {
		t.Errorf("expected one failed outcome, got %+v", stats.outcomes)
	}
}

func TestAnalyzeDocumentEmptyRecognition(t *testing.T) {
	recognizer := &mockRecognizer{result: &ocr.Result{}}
	repo := &mockRecordRepo{}
	stats := &mockStats{}
	service := NewService(recognizer, NewStore(repo, stats))

	result, err := service.AnalyzeDocument(context.Background(), "asset-1", []byte("img"))
	if err != nil {
		t.Fatalf("empty recognition must not be an error, got %v", err)
	}
	if result.RawText != "" {
		t.Errorf("expected empty raw text, got %q", result.RawText)
	}
	if len(result.Fields.Missing()) != 5 {
		t.Errorf("expected all fields missing, got %v", result.Fields.Missing())
	}
}

func TestAnalyzeDocumentOCRFailure(t *testing.T) {
	recognizer := &mockRecognizer{err: &ocr.TransportError{Err: errors.New("timeout")}}
	repo := &mockRecordRepo{}
	stats := &mockStats{}
	service := NewService(recognizer, NewStore(repo, stats))

	_, err := service.AnalyzeDocument(context.Background(), "asset-1", []byte("img"))

	var transportErr *ocr.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected transport error to propagate, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Errorf("expected no record on OCR failure, got %d", len(repo.created))
	}
	if len(stats.outcomes) != 1 || stats.outcomes[0].success {
		t.Errorf("expected one failed outcome, got %+v", stats.outcomes)
	}
}

func TestAnalyzeInstrumentPanel(t *testing.T) {
	recognizer := &mockRecognizer{result: textResult([]string{"123456", "km"})}
	repo := &mockRecordRepo{}
	stats := &mockStats{}
	service := NewService(recognizer, NewStore(repo, stats))

	result, err := service.AnalyzeInstrumentPanel(context.Background(), "asset-2", []byte("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Odometer == nil || *result.Odometer != 123456 {
		t.Fatalf("expected odometer 123456, got %v", result.Odometer)
	}
	if !result.ContainsDigits {
		t.Error("expected contains_digits to be true")
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 record, got %d", len(repo.created))
	}
	rec := repo.created[0]
	if rec.DocumentType != models.DocTypeInstrumentPanel {
		t.Errorf("unexpected document type: %q", rec.DocumentType)
	}
	if rec.Motohours == nil || *rec.Motohours != 123456 {
		t.Errorf("expected motohours mirror of odometer, got %v", rec.Motohours)
	}
}

func TestAnalyzeInstrumentPanelNoReading(t *testing.T) {
	recognizer := &mockRecognizer{result: textResult([]string{"приборная", "панель"})}
	repo := &mockRecordRepo{}
	stats := &mockStats{}
	service := NewService(recognizer, NewStore(repo, stats))

	result, err := service.AnalyzeInstrumentPanel(context.Background(), "asset-2", []byte("img"))
	if err != nil {
		t.Fatalf("absent odometer must not be an error, got %v", err)
	}

	if result.Odometer != nil {
		t.Errorf("expected absent odometer, got %d", *result.Odometer)
	}
	if result.ContainsDigits {
		t.Error("expected contains_digits to be false")
	}
	if len(stats.outcomes) != 1 || stats.outcomes[0].success {
		t.Errorf("expected one failed outcome, got %+v", stats.outcomes)
	}
}
