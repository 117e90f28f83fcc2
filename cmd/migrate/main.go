package main

import (
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/vdmitriev/vregscan/internal/database"
)

func main() {
	var (
		dbType         = flag.String("db", "postgres", "Database type (postgres or sqlite)")
		host           = flag.String("host", "localhost", "Database host")
		port           = flag.Int("port", 5432, "Database port")
		user           = flag.String("user", "vregscan", "Database user")
		password       = flag.String("password", "vregscan_dev", "Database password")
		dbName         = flag.String("name", "vregscan", "Database name")
		migrationsPath = flag.String("migrations", "./migrations", "Path to migrations directory")
	)
	flag.Parse()

	config := database.Config{
		Type:     *dbType,
		Host:     *host,
		Port:     *port,
		User:     *user,
		Password: *password,
		Name:     *dbName,
	}

	// Environment variables override flags
	if env := os.Getenv("DB_TYPE"); env != "" {
		config.Type = env
	}
	if env := os.Getenv("DB_HOST"); env != "" {
		config.Host = env
	}
	if env := os.Getenv("DB_PORT"); env != "" {
		p, err := strconv.Atoi(env)
		if err != nil {
			log.Fatal("Invalid DB_PORT: ", err)
		}
		config.Port = p
	}
	if env := os.Getenv("DB_USER"); env != "" {
		config.User = env
	}
	if env := os.Getenv("DB_PASSWORD"); env != "" {
		config.Password = env
	}
	if env := os.Getenv("DB_NAME"); env != "" {
		config.Name = env
	}
	if env := os.Getenv("DB_PATH"); env != "" {
		config.SQLitePath = env
	}

	db, err := database.NewDB(config)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	if err := db.RunMigrations(*migrationsPath); err != nil {
		log.Fatal("Migration failed: ", err)
	}

	log.Println("Migrations complete")
}
