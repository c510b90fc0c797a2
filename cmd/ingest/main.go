// Command ingest moves one delimited object from object storage into a
// relational table. When the load fails the dataset is staged as Parquet under
// a date partition and a catalog crawler is started so the data stays
// queryable.
//
// Configuration is read from the environment (and an optional .env file).
// Exit status: 0 succeeded, 1 configuration or startup failure, 2 data at
// risk, 3 degraded, 4 degraded and the crawler could not be started.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/sirupsen/logrus"

	"ingest/internal/catalog"
	"ingest/internal/config"
	"ingest/internal/extract"
	"ingest/internal/fallback"
	"ingest/internal/load"
	"ingest/internal/logging"
	"ingest/internal/metrics"
	"ingest/internal/metrics/datadog"
	"ingest/internal/metrics/prompush"
	"ingest/internal/objstore"
	"ingest/internal/objstore/localfs"
	"ingest/internal/objstore/s3store"
	"ingest/internal/pipeline"
	"ingest/internal/rdsauth"

	// register all sink backends with the storage factory.
	_ "ingest/internal/storage/all"
)

func main() {
	os.Exit(run(context.Background(), os.Stderr))
}

// run executes one ingest pass and returns the process exit code.
func run(ctx context.Context, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return pipeline.ExitConfig
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintln(stderr, "configuration is invalid")
		return pipeline.ExitConfig
	}

	log, closeLog, err := logging.New(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "logging: %v\n", err)
		return pipeline.ExitConfig
	}
	defer func() { _ = closeLog() }()

	setupMetrics(cfg, log)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.WithError(err).Warn("metrics: flush failed")
		}
	}()

	orch, err := build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("startup failed")
		return pipeline.ExitConfig
	}

	log.WithFields(logrus.Fields{
		"source":   cfg.Source.Location(),
		"sink":     cfg.Sink.Kind,
		"table":    cfg.Sink.Table,
		"fallback": cfg.Fallback.Path,
	}).Info("ingest: run starting")

	return orch.Run(ctx).ExitCode()
}

// build constructs the clients once and wires them into an orchestrator.
func build(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*pipeline.Orchestrator, error) {
	base, err := objstore.Parse(cfg.Fallback.Path)
	if err != nil {
		return nil, fmt.Errorf("fallback path: %w", err)
	}

	var awsOpts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Region != "" {
		awsOpts = append(awsOpts, awsconfig.WithRegion(cfg.AWS.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	store := objstore.Router{
		S3:    s3store.New(s3store.NewClient(awsCfg, s3store.Options{Endpoint: cfg.AWS.S3Endpoint, PathStyle: cfg.AWS.S3PathStyle})),
		Local: localfs.New(),
	}

	loadOpts := []load.Option{load.WithJob(cfg.Job)}
	if cfg.Sink.IAMAuth {
		loadOpts = append(loadOpts, load.WithTokenFunc(rdsauth.NewTokenProvider(awsCfg).Token))
	}

	delim, _ := utf8.DecodeRuneInString(cfg.Source.Delimiter)
	return pipeline.New(
		extract.New(store, extract.Options{Delimiter: delim, Encoding: cfg.Source.Encoding}, log),
		load.New(log, loadOpts...),
		fallback.New(store, log),
		catalog.New(glue.NewFromConfig(awsCfg), log),
		pipeline.Config{
			Job:      cfg.Job,
			Source:   cfg.Source.Location(),
			Target:   targetFrom(cfg.Sink),
			Fallback: base,
			Crawler:  cfg.Catalog.Crawler,
		},
		log,
	), nil
}

func targetFrom(s config.Sink) load.Target {
	return load.Target{
		Kind:       s.Kind,
		DSN:        s.DSN,
		Host:       s.Host,
		Port:       s.Port,
		User:       s.User,
		Password:   s.Password,
		Database:   s.Database,
		Table:      s.Table,
		IAMAuth:    s.IAMAuth,
		AutoCreate: s.AutoCreate,
		BatchSize:  s.BatchSize,
	}
}

// setupMetrics installs the configured backend. A backend that fails to
// initialize leaves the nop backend in place.
func setupMetrics(cfg config.Config, log logrus.FieldLogger) {
	switch cfg.Metrics.Backend {
	case "pushgateway":
		b, err := prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			log.WithError(err).Warn("metrics: failed to init prom push backend; using nop")
			return
		}
		metrics.SetBackend(b)
		log.WithFields(logrus.Fields{"backend": "pushgateway", "url": cfg.Metrics.PushgatewayURL}).Debug("metrics: enabled")
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DogStatsDAddr,
			Namespace:  "ingest.",
			GlobalTags: []string{"job:" + cfg.Job},
		})
		if err != nil {
			log.WithError(err).Warn("metrics: failed to init datadog backend; using nop")
			return
		}
		metrics.SetBackend(b)
		log.WithFields(logrus.Fields{"backend": "datadog", "addr": cfg.Metrics.DogStatsDAddr}).Debug("metrics: enabled")
	default:
		log.Debug("metrics: disabled")
	}
}
