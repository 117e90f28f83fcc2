package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/vdmitriev/vregscan/internal/extract"
	"github.com/vdmitriev/vregscan/internal/ocr"
)

// Offline pipeline runner: sends one image through recognition and prints
// the extracted fields as JSON. Nothing is persisted.
func main() {
	var (
		path = flag.String("file", "", "Path to the image file")
		mode = flag.String("mode", "document", "Analysis mode (document or panel)")
	)
	flag.Parse()

	if *path == "" {
		log.Fatal("Please provide an image path with -file flag")
	}

	apiKey := os.Getenv("OCR_API_KEY")
	folderID := os.Getenv("OCR_FOLDER_ID")
	if apiKey == "" || folderID == "" {
		log.Fatal("OCR_API_KEY and OCR_FOLDER_ID must be set")
	}

	imageData, err := os.ReadFile(*path)
	if err != nil {
		log.Fatal("Failed to read image: ", err)
	}

	client := ocr.NewClient(apiKey, folderID)
	if endpoint := os.Getenv("OCR_ENDPOINT"); endpoint != "" {
		client = ocr.NewClientWithEndpoint(apiKey, folderID, endpoint)
	}

	raw, err := client.Recognize(context.Background(), imageData, ocr.FeatureTextDetection)
	if err != nil {
		log.Fatal("Recognition failed: ", err)
	}

	text := ocr.Flatten(raw)
	fmt.Fprintln(os.Stderr, "--- recognized text ---")
	fmt.Fprintln(os.Stderr, text)
	fmt.Fprintln(os.Stderr, "-----------------------")

	var output interface{}
	switch *mode {
	case "document":
		output = struct {
			Fields  extract.Fields  `json:"fields"`
			Verdict extract.Verdict `json:"verdict"`
		}{
			Fields:  extract.ParseDocumentFields(text),
			Verdict: extract.Classify(text),
		}
	case "panel":
		output = struct {
			Odometer       *int `json:"odometer"`
			ContainsDigits bool `json:"contains_digits"`
		}{
			Odometer:       extract.ParseOdometer(text),
			ContainsDigits: extract.ContainsDigits(text),
		}
	default:
		log.Fatalf("Unknown mode: %s", *mode)
	}

	encoded, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		log.Fatal("Failed to encode output: ", err)
	}
	fmt.Println(string(encoded))
}
