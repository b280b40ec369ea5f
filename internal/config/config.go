package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/RMahshie/rfsweep/internal/parser"
	"github.com/RMahshie/rfsweep/internal/processing"
	"github.com/RMahshie/rfsweep/internal/rfmath"
	"github.com/RMahshie/rfsweep/internal/storage"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	AWS      AWSConfig
	Parse    ParseConfig
	Output   OutputConfig
	Plot     PlotConfig
	LogLevel string
}

// DatabaseConfig holds database configuration. An empty URL disables the archive.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// AWSConfig holds AWS/S3 configuration. An empty bucket disables object storage.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Endpoint      string
}

// ParseConfig controls how sweep files are interpreted
type ParseConfig struct {
	// Frequency divisors to MHz, per vendor format
	DivisorTouchstone   float64
	DivisorRohdeSchwarz float64
	DivisorAgilent      float64

	MismatchPositive bool
}

// OutputConfig controls which artifacts the CLI writes
type OutputConfig struct {
	Dir    string
	XLSX   bool
	HTML   bool
	NoPlot bool
}

// PlotConfig selects the plot layout
type PlotConfig struct {
	SideBySide bool
	Smith      bool
}

// Load loads configuration from environment variables and .env files.
// Flags bound with viper.BindPFlag before Load take precedence.
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "dev")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_ACCESS_KEY_ID", "")
	viper.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	viper.SetDefault("S3_BUCKET", "")
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("FREQ_DIVISOR_TOUCHSTONE", 1e6)
	viper.SetDefault("FREQ_DIVISOR_ROHDE_SCHWARZ", 1e6)
	viper.SetDefault("FREQ_DIVISOR_AGILENT", 1e6)
	viper.SetDefault("MISMATCH_LOSS_POSITIVE", false)
	viper.SetDefault("OUTPUT_DIR", "")
	viper.SetDefault("EXPORT_XLSX", false)
	viper.SetDefault("EXPORT_HTML", false)
	viper.SetDefault("NO_PLOT", false)
	viper.SetDefault("SIDE_BY_SIDE", false)
	viper.SetDefault("SMITH", false)

	// Read from .env files based on environment
	env := viper.GetString("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	viper.SetConfigName(".env." + env)
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// Ignore error - file may not exist
	_ = viper.ReadInConfig()

	// Environment variables override .env file values
	viper.AutomaticEnv()

	for _, key := range []string{
		"DATABASE_URL", "PORT", "ENVIRONMENT", "ALLOWED_ORIGINS", "LOG_LEVEL",
		"AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "S3_BUCKET", "S3_ENDPOINT",
		"FREQ_DIVISOR_TOUCHSTONE", "FREQ_DIVISOR_ROHDE_SCHWARZ", "FREQ_DIVISOR_AGILENT",
		"MISMATCH_LOSS_POSITIVE", "OUTPUT_DIR", "EXPORT_XLSX", "EXPORT_HTML", "NO_PLOT",
		"SIDE_BY_SIDE", "SMITH",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var config Config
	config.Database.URL = viper.GetString("DATABASE_URL")
	config.Server.Port = viper.GetString("PORT")
	config.Server.Env = viper.GetString("ENVIRONMENT")
	config.Server.AllowedOrigins = splitList(viper.GetString("ALLOWED_ORIGINS"))
	config.AWS.Region = viper.GetString("AWS_REGION")
	config.AWS.AccessKeyID = viper.GetString("AWS_ACCESS_KEY_ID")
	config.AWS.SecretAccessKey = viper.GetString("AWS_SECRET_ACCESS_KEY")
	config.AWS.S3Bucket = viper.GetString("S3_BUCKET")
	config.AWS.S3Endpoint = viper.GetString("S3_ENDPOINT")
	config.Parse.DivisorTouchstone = viper.GetFloat64("FREQ_DIVISOR_TOUCHSTONE")
	config.Parse.DivisorRohdeSchwarz = viper.GetFloat64("FREQ_DIVISOR_ROHDE_SCHWARZ")
	config.Parse.DivisorAgilent = viper.GetFloat64("FREQ_DIVISOR_AGILENT")
	config.Parse.MismatchPositive = viper.GetBool("MISMATCH_LOSS_POSITIVE")
	config.Output.Dir = viper.GetString("OUTPUT_DIR")
	config.Output.XLSX = viper.GetBool("EXPORT_XLSX")
	config.Output.HTML = viper.GetBool("EXPORT_HTML")
	config.Output.NoPlot = viper.GetBool("NO_PLOT")
	config.Plot.SideBySide = viper.GetBool("SIDE_BY_SIDE")
	config.Plot.Smith = viper.GetBool("SMITH")
	config.LogLevel = viper.GetString("LOG_LEVEL")

	for name, div := range map[string]float64{
		"FREQ_DIVISOR_TOUCHSTONE":    config.Parse.DivisorTouchstone,
		"FREQ_DIVISOR_ROHDE_SCHWARZ": config.Parse.DivisorRohdeSchwarz,
		"FREQ_DIVISOR_AGILENT":       config.Parse.DivisorAgilent,
	} {
		if div <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %v", name, div)
		}
	}

	log.Debug().
		Strs("allowed_origins", config.Server.AllowedOrigins).
		Bool("archive", config.Database.URL != "").
		Bool("object_storage", config.AWS.S3Bucket != "").
		Msg("Configuration loaded")

	return &config, nil
}

// ProcessingOptions converts the parse section into pipeline options
func (p ParseConfig) ProcessingOptions() processing.Options {
	return processing.Options{
		Units: parser.UnitScale{
			parser.FormatTouchstone:   p.DivisorTouchstone,
			parser.FormatRohdeSchwarz: p.DivisorRohdeSchwarz,
			parser.FormatAgilent:      p.DivisorAgilent,
		},
		Transform: rfmath.Options{MismatchPositive: p.MismatchPositive},
	}
}

// S3Config returns the storage configuration, or ok=false when no bucket is set
func (a AWSConfig) S3Config() (cfg storage.S3Config, ok bool) {
	if a.S3Bucket == "" {
		return storage.S3Config{}, false
	}
	return storage.S3Config{
		Bucket:    a.S3Bucket,
		Endpoint:  a.S3Endpoint,
		Region:    a.Region,
		AccessKey: a.AccessKeyID,
		SecretKey: a.SecretAccessKey,
	}, true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
