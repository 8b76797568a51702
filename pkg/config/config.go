package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type DBConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	MaxOpenConns int
	MaxIdleConns int
}

type ServerConfig struct {
	Addr string
}

// loadEnvFile pulls config.env into the environment. A missing file is not
// an error, the variables may come from the real environment instead.
func loadEnvFile() error {
	if err := godotenv.Load(filepath.Join("config.env")); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func LoadConfigDB() (*DBConfig, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	port, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxOpen, err := strconv.Atoi(os.Getenv("DB_MAX_OPEN_CONNS"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}

	maxIdle, err := strconv.Atoi(os.Getenv("DB_MAX_IDLE_CONNS"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	return &DBConfig{
		Host:         os.Getenv("DB_HOST"),
		Port:         port,
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		MaxOpenConns: maxOpen,
		MaxIdleConns: maxIdle,
	}, nil
}

func LoadConfigServer() (*ServerConfig, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return &ServerConfig{Addr: addr}, nil
}
