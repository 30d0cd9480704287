// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port      string        `envconfig:"PORT" default:"8080"`
	DBURL     string        `envconfig:"DB_URL" required:"true"`
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiry time.Duration `envconfig:"JWT_EXPIRY" default:"24h"`

	CloudinaryCloudName string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `envconfig:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `envconfig:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `envconfig:"CLOUDINARY_FOLDER" default:"tindahan"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("internal/config: %w", err)
	}

	return cfg, nil
}
