// Package config defines the runtime configuration for an ingest run and
// loads it from the environment.
//
// Every setting is an environment variable; an optional .env file in the
// working directory (or the file named by ENV_FILE) is applied first without
// overriding variables that are already set. There are no CLI flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full configuration for one run.
type Config struct {
	// Job labels metrics and log lines for this deployment.
	Job string

	Source   Source
	Sink     Sink
	Fallback Fallback
	Catalog  Catalog
	AWS      AWS
	Metrics  Metrics
	Log      Log
}

// Source describes the object to extract.
type Source struct {
	Bucket    string // S3_BUCKET; empty means Key is a local path
	Key       string // S3_KEY
	Delimiter string // SOURCE_DELIMITER, one character
	Encoding  string // SOURCE_ENCODING, WHATWG label such as "utf-8" or "windows-1250"
}

// Location returns the source address as accepted by objstore.Parse.
func (s Source) Location() string {
	if s.Bucket == "" {
		return s.Key
	}
	return "s3://" + s.Bucket + "/" + strings.TrimPrefix(s.Key, "/")
}

// Sink describes the relational table rows are appended to.
type Sink struct {
	Kind       string // SINK_KIND: mysql, postgres, mssql or sqlite
	DSN        string // SINK_DSN, overrides the discrete fields when set
	Host       string // RDS_HOST
	Port       int    // RDS_PORT
	User       string // RDS_USER
	Password   string // RDS_PASSWORD
	Database   string // RDS_DB
	Table      string // SINK_TABLE
	BatchSize  int    // LOAD_BATCH_SIZE
	AutoCreate bool   // SINK_AUTO_CREATE
	IAMAuth    bool   // RDS_IAM_AUTH
}

// Fallback holds the base of the date-partitioned Parquet snapshot.
type Fallback struct {
	Path string // FALLBACK_PATH, s3://bucket/prefix or a local directory
}

// Catalog names the crawler that re-indexes the fallback location.
type Catalog struct {
	Crawler string // GLUE_CRAWLER
}

// AWS holds client settings shared by the S3 and Glue clients.
type AWS struct {
	Region      string // AWS_REGION
	S3Endpoint  string // S3_ENDPOINT
	S3PathStyle bool   // S3_FORCE_PATH_STYLE
}

// Metrics selects the metrics backend.
type Metrics struct {
	Backend        string // METRICS_BACKEND: none, pushgateway or datadog
	PushgatewayURL string // PUSHGATEWAY_URL
	DogStatsDAddr  string // DOGSTATSD_ADDR
}

// Log configures the process logger.
type Log struct {
	Level  string // LOG_LEVEL
	Format string // LOG_FORMAT: text or json
	File   string // LOG_FILE, rotated; empty logs to stderr
}

// Default values for optional settings.
const (
	DefaultSinkKind  = "mysql"
	DefaultTable     = "ingestin_db"
	DefaultPort      = 3306
	DefaultBatchSize = 5000
	DefaultJob       = "ingest"
)

// Load applies the optional env file and reads Config from the environment.
func Load() (Config, error) {
	if path := os.Getenv("ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", path, err)
		}
	} else {
		_ = godotenv.Load()
	}
	return FromViper(newViper()), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("JOB_NAME", DefaultJob)
	v.SetDefault("SOURCE_DELIMITER", ",")
	v.SetDefault("SOURCE_ENCODING", "utf-8")
	v.SetDefault("SINK_KIND", DefaultSinkKind)
	v.SetDefault("SINK_TABLE", DefaultTable)
	v.SetDefault("RDS_PORT", DefaultPort)
	v.SetDefault("LOAD_BATCH_SIZE", DefaultBatchSize)
	v.SetDefault("SINK_AUTO_CREATE", true)
	v.SetDefault("RDS_IAM_AUTH", false)
	v.SetDefault("S3_FORCE_PATH_STYLE", false)
	v.SetDefault("METRICS_BACKEND", "none")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	return v
}

// FromViper maps the flat environment keys held by v onto Config.
func FromViper(v *viper.Viper) Config {
	str := func(k string) string { return strings.TrimSpace(v.GetString(k)) }
	return Config{
		Job: str("JOB_NAME"),
		Source: Source{
			Bucket:    str("S3_BUCKET"),
			Key:       str("S3_KEY"),
			Delimiter: v.GetString("SOURCE_DELIMITER"),
			Encoding:  str("SOURCE_ENCODING"),
		},
		Sink: Sink{
			Kind:       strings.ToLower(str("SINK_KIND")),
			DSN:        str("SINK_DSN"),
			Host:       str("RDS_HOST"),
			Port:       v.GetInt("RDS_PORT"),
			User:       str("RDS_USER"),
			Password:   v.GetString("RDS_PASSWORD"),
			Database:   str("RDS_DB"),
			Table:      str("SINK_TABLE"),
			BatchSize:  v.GetInt("LOAD_BATCH_SIZE"),
			AutoCreate: v.GetBool("SINK_AUTO_CREATE"),
			IAMAuth:    v.GetBool("RDS_IAM_AUTH"),
		},
		Fallback: Fallback{Path: str("FALLBACK_PATH")},
		Catalog:  Catalog{Crawler: str("GLUE_CRAWLER")},
		AWS: AWS{
			Region:      str("AWS_REGION"),
			S3Endpoint:  str("S3_ENDPOINT"),
			S3PathStyle: v.GetBool("S3_FORCE_PATH_STYLE"),
		},
		Metrics: Metrics{
			Backend:        strings.ToLower(str("METRICS_BACKEND")),
			PushgatewayURL: str("PUSHGATEWAY_URL"),
			DogStatsDAddr:  str("DOGSTATSD_ADDR"),
		},
		Log: Log{
			Level:  strings.ToLower(str("LOG_LEVEL")),
			Format: strings.ToLower(str("LOG_FORMAT")),
			File:   str("LOG_FILE"),
		},
	}
}
