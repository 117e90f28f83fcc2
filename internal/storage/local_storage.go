package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// SaveImage writes the image under a generated name and returns it.
func (ls *LocalStorage) SaveImage(data []byte, contentType string) (string, error) {
	ext := extensionFor(contentType)
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	fullPath := filepath.Join(ls.basePath, filename)

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return filename, nil
}

func (ls *LocalStorage) DeleteImage(name string) error {
	cleanPath := filepath.Clean(name)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("invalid path")
	}

	if err := os.Remove(filepath.Join(ls.basePath, cleanPath)); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	default:
		return ".jpg"
	}
}
