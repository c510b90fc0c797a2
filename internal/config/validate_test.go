package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func validConfig() Config {
	return Config{
		Job:    "ingest",
		Source: Source{Bucket: "raw", Key: "in.csv", Delimiter: ",", Encoding: "utf-8"},
		Sink: Sink{
			Kind: "mysql", Host: "h", Port: 3306, User: "u", Password: "p", Database: "d",
			Table: "ingestin_db", BatchSize: 5000, AutoCreate: true,
		},
		Fallback: Fallback{Path: "s3://lake/fallback"},
		Catalog:  Catalog{Crawler: "crawler"},
		Metrics:  Metrics{Backend: "none"},
		Log:      Log{Level: "info", Format: "text"},
	}
}

func TestValidate_ValidMinimal(t *testing.T) {
	t.Parallel()

	if issues := Validate(validConfig()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestValidate_Issues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		sev    IssueSeverity
		path   string
		substr string
	}{
		{"missing key", func(c *Config) { c.Source.Key = "" }, SeverityError, "S3_KEY", "required"},
		{"bucket with slash", func(c *Config) { c.Source.Bucket = "a/b" }, SeverityError, "S3_BUCKET", "must not contain"},
		{"long delimiter", func(c *Config) { c.Source.Delimiter = "||" }, SeverityError, "SOURCE_DELIMITER", "exactly one"},
		{"quote delimiter", func(c *Config) { c.Source.Delimiter = `"` }, SeverityError, "SOURCE_DELIMITER", "not allowed"},
		{"unknown sink", func(c *Config) { c.Sink.Kind = "oracle" }, SeverityError, "SINK_KIND", "unsupported"},
		{"empty table", func(c *Config) { c.Sink.Table = "" }, SeverityError, "SINK_TABLE", "empty"},
		{"zero batch", func(c *Config) { c.Sink.BatchSize = 0 }, SeverityError, "LOAD_BATCH_SIZE", "> 0"},
		{"missing host", func(c *Config) { c.Sink.Host = "" }, SeverityError, "RDS_HOST", "required"},
		{"missing user", func(c *Config) { c.Sink.User = "" }, SeverityError, "RDS_USER", "required"},
		{"missing db", func(c *Config) { c.Sink.Database = "" }, SeverityError, "RDS_DB", "required"},
		{"bad port", func(c *Config) { c.Sink.Port = 70000 }, SeverityError, "RDS_PORT", "out of range"},
		{"empty password", func(c *Config) { c.Sink.Password = "" }, SeverityWarning, "RDS_PASSWORD", "empty"},
		{"sqlite needs path", func(c *Config) { c.Sink.Kind = "sqlite"; c.Sink.Database = "" }, SeverityError, "RDS_DB", "sqlite"},
		{"iam on mssql", func(c *Config) { c.Sink.Kind = "mssql"; c.Sink.IAMAuth = true }, SeverityWarning, "RDS_IAM_AUTH", "ignored"},
		{"iam with dsn", func(c *Config) { c.Sink.DSN = "u:p@tcp(h)/d"; c.Sink.IAMAuth = true }, SeverityWarning, "RDS_IAM_AUTH", "SINK_DSN"},
		{"missing fallback", func(c *Config) { c.Fallback.Path = "" }, SeverityError, "FALLBACK_PATH", "required"},
		{"bad fallback scheme", func(c *Config) { c.Fallback.Path = "gs://b/p" }, SeverityError, "FALLBACK_PATH", "gs"},
		{"missing crawler", func(c *Config) { c.Catalog.Crawler = "" }, SeverityError, "GLUE_CRAWLER", "required"},
		{"missing job", func(c *Config) { c.Job = "" }, SeverityError, "JOB_NAME", "must not be empty"},
		{"pushgateway url", func(c *Config) { c.Metrics.Backend = "pushgateway" }, SeverityError, "PUSHGATEWAY_URL", "required"},
		{"dogstatsd addr", func(c *Config) { c.Metrics.Backend = "datadog" }, SeverityError, "DOGSTATSD_ADDR", "required"},
		{"unknown metrics", func(c *Config) { c.Metrics.Backend = "graphite" }, SeverityError, "METRICS_BACKEND", "unsupported"},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, SeverityWarning, "LOG_FORMAT", "unsupported"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)
			issues := Validate(cfg)
			if !hasIssue(t, issues, tt.sev, tt.path, tt.substr) {
				t.Fatalf("want %s at %s containing %q; got %+v", tt.sev, tt.path, tt.substr, issues)
			}
		})
	}
}

func TestValidate_DSNSkipsDiscreteFields(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Sink = Sink{Kind: "postgres", DSN: "postgres://x", Table: "t", BatchSize: 10}
	if issues := Validate(cfg); len(issues) != 0 {
		t.Fatalf("expected no issues with SINK_DSN set, got %+v", issues)
	}
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	if HasErrors([]Issue{{Severity: SeverityWarning}}) {
		t.Fatal("warnings alone must not count as errors")
	}
	if !HasErrors([]Issue{{Severity: SeverityWarning}, {Severity: SeverityError}}) {
		t.Fatal("HasErrors missed an error")
	}
	if got := (Issue{Severity: SeverityError, Path: "S3_KEY", Message: "x"}).Error(); got != "error at S3_KEY: x" {
		t.Fatalf("Issue.Error() = %q", got)
	}
}
