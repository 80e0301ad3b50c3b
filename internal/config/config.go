// Package config loads the demo configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/iw2rmb/inkwell/engine"
)

type Config struct {
	Environment string `yaml:"environment" validate:"oneof=development production"`
	Log         Log    `yaml:"log"`
	Editor      Editor `yaml:"editor"`
	Upload      Upload `yaml:"upload"`
}

type Log struct {
	// Path is the log file. Empty disables logging.
	Path  string `yaml:"path"`
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

type Editor struct {
	Debounce      time.Duration `yaml:"debounce" validate:"gte=0"`
	MaxImageBytes int           `yaml:"max_image_bytes" validate:"gte=0"`
	HideToolbar   bool          `yaml:"hide_toolbar"`
	CellWidthPx   int           `yaml:"cell_width_px" validate:"gte=0"`
	CellHeightPx  int           `yaml:"cell_height_px" validate:"gte=0"`
	// ImageBaseURL resolves relative image sources when checking them.
	ImageBaseURL string `yaml:"image_base_url" validate:"omitempty,url"`
	// VerifyRemote fetches remote images to mark broken ones.
	VerifyRemote bool `yaml:"verify_remote"`
}

type Upload struct {
	// Mode selects where images go: "none" embeds previews.
	Mode string `yaml:"mode" validate:"oneof=none http s3"`

	Endpoint string `yaml:"endpoint" validate:"required_if=Mode http,omitempty,url"`
	Token    string `yaml:"token"`

	S3Endpoint string `yaml:"s3_endpoint" validate:"required_if=Mode s3"`
	Bucket     string `yaml:"bucket" validate:"required_if=Mode s3"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Region     string `yaml:"region"`
	UseSSL     bool   `yaml:"use_ssl"`
	Prefix     string `yaml:"prefix"`
	PublicURL  string `yaml:"public_url" validate:"omitempty,url"`
}

func Default() Config {
	return Config{
		Environment: "development",
		Log:         Log{Level: "info"},
		Editor: Editor{
			Debounce:      100 * time.Millisecond,
			MaxImageBytes: engine.DefaultMaxImageBytes,
		},
		Upload: Upload{Mode: "none", Region: "us-east-1", Prefix: "images/"},
	}
}

// Load reads path (when not empty) over the defaults, applies INKWELL_*
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Environment = getenv("INKWELL_ENV", cfg.Environment)
	cfg.Log.Path = getenv("INKWELL_LOG_FILE", cfg.Log.Path)
	cfg.Log.Level = getenv("INKWELL_LOG_LEVEL", cfg.Log.Level)

	cfg.Editor.Debounce = getenvDuration("INKWELL_DEBOUNCE", cfg.Editor.Debounce)
	cfg.Editor.MaxImageBytes = getenvInt("INKWELL_MAX_IMAGE_BYTES", cfg.Editor.MaxImageBytes)
	cfg.Editor.ImageBaseURL = getenv("INKWELL_IMAGE_BASE_URL", cfg.Editor.ImageBaseURL)

	cfg.Upload.Mode = getenv("INKWELL_UPLOAD_MODE", cfg.Upload.Mode)
	cfg.Upload.Endpoint = getenv("INKWELL_UPLOAD_ENDPOINT", cfg.Upload.Endpoint)
	cfg.Upload.Token = getenv("INKWELL_UPLOAD_TOKEN", cfg.Upload.Token)
	cfg.Upload.S3Endpoint = getenv("INKWELL_S3_ENDPOINT", cfg.Upload.S3Endpoint)
	cfg.Upload.Bucket = getenv("INKWELL_S3_BUCKET", cfg.Upload.Bucket)
	cfg.Upload.AccessKey = getenv("INKWELL_S3_ACCESS_KEY", cfg.Upload.AccessKey)
	cfg.Upload.SecretKey = getenv("INKWELL_S3_SECRET_KEY", cfg.Upload.SecretKey)
	cfg.Upload.Region = getenv("INKWELL_S3_REGION", cfg.Upload.Region)
	cfg.Upload.UseSSL = getenvBool("INKWELL_S3_USE_SSL", cfg.Upload.UseSSL)
	cfg.Upload.PublicURL = getenv("INKWELL_S3_PUBLIC_URL", cfg.Upload.PublicURL)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml keys so messages match the file.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldError(e))
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

func fieldError(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, strings.ToLower(strings.Replace(e.Param(), " ", " is ", 1)))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid url", field)
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
