package main

import (
	"net/http"
	"os"
	"strconv"

	"github.com/vdmitriev/vregscan/internal/analysis"
	"github.com/vdmitriev/vregscan/internal/api"
	"github.com/vdmitriev/vregscan/internal/database"
	"github.com/vdmitriev/vregscan/internal/logger"
	"github.com/vdmitriev/vregscan/internal/ocr"
	"github.com/vdmitriev/vregscan/internal/storage"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	maxUploadSize := os.Getenv("MAX_UPLOAD_SIZE")
	if maxUploadSize == "" {
		maxUploadSize = "20971520"
	}
	maxSize, err := strconv.ParseInt(maxUploadSize, 10, 64)
	if err != nil {
		logger.L.Fatal("Invalid MAX_UPLOAD_SIZE: ", err)
	}

	// Database configuration
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	var dbConfig database.Config
	dbConfig.Type = dbType

	if dbType == "postgres" {
		dbConfig.Host = os.Getenv("DB_HOST")
		if dbConfig.Host == "" {
			dbConfig.Host = "localhost"
		}

		dbPortStr := os.Getenv("DB_PORT")
		if dbPortStr == "" {
			dbPortStr = "5432"
		}
		dbPort, err := strconv.Atoi(dbPortStr)
		if err != nil {
			logger.L.Fatal("Invalid DB_PORT: ", err)
		}
		dbConfig.Port = dbPort

		dbConfig.User = os.Getenv("DB_USER")
		if dbConfig.User == "" {
			dbConfig.User = "vregscan"
		}

		dbConfig.Password = os.Getenv("DB_PASSWORD")
		if dbConfig.Password == "" {
			dbConfig.Password = "vregscan_dev"
		}

		dbConfig.Name = os.Getenv("DB_NAME")
		if dbConfig.Name == "" {
			dbConfig.Name = "vregscan"
		}
	} else {
		dbConfig.SQLitePath = os.Getenv("DB_PATH")
		if dbConfig.SQLitePath == "" {
			dbConfig.SQLitePath = "./vregscan.db"
		}
	}

	db, err := database.NewDB(dbConfig)
	if err != nil {
		logger.L.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.RunMigrations(migrationsPath); err != nil {
		logger.L.Fatal("Failed to run migrations: ", err)
	}

	apiKey := os.Getenv("OCR_API_KEY")
	folderID := os.Getenv("OCR_FOLDER_ID")
	if apiKey == "" || folderID == "" {
		logger.L.Warn("OCR credentials not configured. Set OCR_API_KEY and OCR_FOLDER_ID")
	}

	ocrClient := ocr.NewClient(apiKey, folderID)
	if endpoint := os.Getenv("OCR_ENDPOINT"); endpoint != "" {
		ocrClient = ocr.NewClientWithEndpoint(apiKey, folderID, endpoint)
	}

	store := analysis.NewStore(database.NewAnalysisRepo(db), database.NewStatsRepo(db))
	service := analysis.NewService(ocrClient, store)

	var audit storage.AuditStore
	if auditDir := os.Getenv("AUDIT_DIR"); auditDir != "" {
		local, err := storage.NewLocalStorage(auditDir)
		if err != nil {
			logger.L.Fatal("Failed to initialize audit storage: ", err)
		}
		audit = local
		logger.L.Infof("Audit storage enabled: %s", auditDir)
	}

	app := &api.App{
		Analysis:      service,
		Store:         store,
		Stats:         database.NewStatsRepo(db),
		Audit:         audit,
		MaxUploadSize: maxSize,
	}

	router := api.NewRouter(app)

	logger.L.Infof("Server starting on port %s", port)
	logger.L.Infof("Database type: %s", dbType)
	if dbType == "sqlite" {
		logger.L.Infof("Database path: %s", dbConfig.SQLitePath)
	}

	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.L.Fatal(err)
	}
}
