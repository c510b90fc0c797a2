package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ingest/internal/objstore"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is the environment
// variable the finding refers to.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains at least one SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

var sinkKinds = map[string]bool{"mysql": true, "postgres": true, "mssql": true, "sqlite": true}

// Validate performs static checks over cfg and returns the issues found. It
// does not mutate cfg and does not touch the network.
func Validate(cfg Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.Job == "" {
		add(SeverityError, "JOB_NAME", "job must not be empty; it labels metrics and log lines")
	}

	issues = append(issues, validateSource(cfg.Source)...)
	issues = append(issues, validateSink(cfg.Sink)...)

	if cfg.Fallback.Path == "" {
		add(SeverityError, "FALLBACK_PATH", "fallback path is required")
	} else if _, err := objstore.Parse(cfg.Fallback.Path); err != nil {
		add(SeverityError, "FALLBACK_PATH", "%v", err)
	}

	if cfg.Catalog.Crawler == "" {
		add(SeverityError, "GLUE_CRAWLER", "crawler name is required")
	}

	switch cfg.Metrics.Backend {
	case "", "none":
	case "pushgateway":
		if cfg.Metrics.PushgatewayURL == "" {
			add(SeverityError, "PUSHGATEWAY_URL", "required when METRICS_BACKEND=pushgateway")
		}
	case "datadog":
		if cfg.Metrics.DogStatsDAddr == "" {
			add(SeverityError, "DOGSTATSD_ADDR", "required when METRICS_BACKEND=datadog")
		}
	default:
		add(SeverityError, "METRICS_BACKEND", "unsupported metrics backend %q (want none, pushgateway or datadog)", cfg.Metrics.Backend)
	}

	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		add(SeverityWarning, "LOG_FORMAT", "unsupported log format %q; text is used", cfg.Log.Format)
	}

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue
	add := func(path, msg string) {
		issues = append(issues, Issue{Severity: SeverityError, Path: path, Message: msg})
	}

	if s.Key == "" {
		add("S3_KEY", "object key is required")
	}
	if strings.Contains(s.Bucket, "/") {
		add("S3_BUCKET", fmt.Sprintf("bucket %q must not contain '/'", s.Bucket))
	}
	if utf8.RuneCountInString(s.Delimiter) != 1 {
		add("SOURCE_DELIMITER", fmt.Sprintf("delimiter must be exactly one character, got %q", s.Delimiter))
	} else if r, _ := utf8.DecodeRuneInString(s.Delimiter); r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		add("SOURCE_DELIMITER", fmt.Sprintf("delimiter %q is not allowed", s.Delimiter))
	}
	return issues
}

func validateSink(s Sink) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, msg string) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: msg})
	}

	if !sinkKinds[s.Kind] {
		add(SeverityError, "SINK_KIND", fmt.Sprintf("unsupported sink kind %q (want mysql, postgres, mssql or sqlite)", s.Kind))
	}
	if s.Table == "" {
		add(SeverityError, "SINK_TABLE", "table must not be empty")
	}
	if s.BatchSize <= 0 {
		add(SeverityError, "LOAD_BATCH_SIZE", fmt.Sprintf("batch size must be > 0, got %d", s.BatchSize))
	}

	if s.DSN == "" {
		if s.Kind == "sqlite" {
			if s.Database == "" {
				add(SeverityError, "RDS_DB", "database file path is required for sqlite when SINK_DSN is empty")
			}
		} else {
			if s.Host == "" {
				add(SeverityError, "RDS_HOST", "host is required when SINK_DSN is empty")
			}
			if s.User == "" {
				add(SeverityError, "RDS_USER", "user is required when SINK_DSN is empty")
			}
			if s.Database == "" {
				add(SeverityError, "RDS_DB", "database is required when SINK_DSN is empty")
			}
			if s.Port <= 0 || s.Port > 65535 {
				add(SeverityError, "RDS_PORT", fmt.Sprintf("port %d out of range", s.Port))
			}
			if s.Password == "" && !s.IAMAuth {
				add(SeverityWarning, "RDS_PASSWORD", "password is empty and IAM auth is disabled")
			}
		}
	}

	if s.IAMAuth {
		switch {
		case s.Kind != "mysql" && s.Kind != "postgres":
			add(SeverityWarning, "RDS_IAM_AUTH", fmt.Sprintf("IAM auth is ignored for sink kind %q", s.Kind))
		case s.DSN != "":
			add(SeverityWarning, "RDS_IAM_AUTH", "IAM auth is ignored when SINK_DSN is set")
		}
	}
	return issues
}
