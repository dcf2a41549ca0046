package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	Mongo      MongoConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Match      MatchConfig
	Cloudinary CloudinaryConfig
	Log        LogConfig
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// .env is only a convenience for local runs
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.App.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.App.StoreTimeout)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWT.TTL)
	}
	switch c.App.StoreDriver {
	case "mongo":
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORE_DRIVER=mongo")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.App.StoreDriver)
	}
	if c.App.BcryptCost < 4 || c.App.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST out of range: %d", c.App.BcryptCost)
	}
	return nil
}

type AppConfig struct {
	Port         string        `envconfig:"PORT" default:"8080"`
	GinMode      string        `envconfig:"GIN_MODE" default:"debug"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"10s"`
	BcryptCost   int           `envconfig:"BCRYPT_COST" default:"12"`
	// StoreDriver is "mongo" or "memory"; memory keeps nothing across restarts.
	StoreDriver  string        `envconfig:"STORE_DRIVER" default:"mongo"`
}

func (a AppConfig) IsRelease() bool {
	return strings.EqualFold(a.GinMode, "release")
}

type MongoConfig struct {
	URI          string `envconfig:"MONGODB_URI"`
	Database     string `envconfig:"MONGODB_DATABASE" default:"wink"`
	Transactions bool   `envconfig:"MONGODB_TRANSACTIONS" default:"false"`
}

type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" required:"true"`
	TTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	AllowVercel    bool     `envconfig:"CORS_ALLOW_VERCEL" default:"true"`
}

// Allowed reports whether origin may call the API. Requests without an
// origin (curl, mobile clients) are allowed.
func (c CORSConfig) Allowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if strings.EqualFold(strings.TrimSpace(o), origin) {
			return true
		}
	}
	return c.AllowVercel && strings.HasSuffix(origin, ".vercel.app")
}

type MatchConfig struct {
	NotifyBoth bool `envconfig:"MATCH_NOTIFY_BOTH" default:"false"`
}

type CloudinaryConfig struct {
	URL    string `envconfig:"CLOUDINARY_URL"`
	Folder string `envconfig:"CLOUDINARY_FOLDER" default:"wink/avatars"`
}

func (c CloudinaryConfig) Enabled() bool {
	return c.URL != ""
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}
