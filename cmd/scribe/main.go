// Command scribe runs the media transcription HTTP service. It accepts a
// media upload, transcribes it with a Whisper sidecar, enriches the raw
// transcript with punctuation via an OpenAI-compatible model, and returns
// the combined result.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skillsenselab/scribe/config"
	"github.com/skillsenselab/scribe/llm/openai"
	"github.com/skillsenselab/scribe/logger"
	"github.com/skillsenselab/scribe/observability"
	"github.com/skillsenselab/scribe/pipeline"
	"github.com/skillsenselab/scribe/punctuate"
	"github.com/skillsenselab/scribe/server"
	"github.com/skillsenselab/scribe/server/endpoint"
	"github.com/skillsenselab/scribe/server/middleware"
	"github.com/skillsenselab/scribe/staging"
	"github.com/skillsenselab/scribe/transcription/whisper"
	"github.com/skillsenselab/scribe/version"
)

const serviceName = "scribe"

func main() {
	configFile := flag.String("config", "", "path to config file (YAML)")
	envFile := flag.String("env", "", "path to .env file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		v := version.GetVersionInfo()
		fmt.Printf("%s %s (%s, built %s)\n", serviceName, v.Version, v.GitCommit, v.BuildTime)
		return
	}

	if err := run(*configFile, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(configFile, envFile string) error {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	var cfg config.Config
	if err := config.Load(serviceName, &cfg, opts...); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Init(cfg.Logging)
	log := logger.New(&cfg.Logging, cfg.Base.Name)
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Observability.Enabled {
		tp, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName:    cfg.Base.Name,
			ServiceVersion: cfg.Base.Version,
			Environment:    cfg.Base.Environment,
			Endpoint:       cfg.Observability.Endpoint,
			Insecure:       cfg.Observability.Insecure,
			SampleRate:     cfg.Observability.SampleRate,
		})
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Warn("Tracer shutdown error", map[string]interface{}{"error": err.Error()})
			}
		}()

		mp, err := observability.InitMeter(ctx, observability.MeterConfig{
			ServiceName:    cfg.Base.Name,
			ServiceVersion: cfg.Base.Version,
			Environment:    cfg.Base.Environment,
			Endpoint:       cfg.Observability.Endpoint,
			Insecure:       cfg.Observability.Insecure,
			Interval:       cfg.Observability.Interval,
		})
		if err != nil {
			return fmt.Errorf("initializing meter: %w", err)
		}
		defer func() {
			if err := mp.Shutdown(context.Background()); err != nil {
				log.Warn("Meter shutdown error", map[string]interface{}{"error": err.Error()})
			}
		}()

		metrics, err = observability.NewMetrics(observability.Meter(cfg.Base.Name))
		if err != nil {
			return fmt.Errorf("creating metrics: %w", err)
		}
	}

	store, err := staging.New(cfg.Staging.Dir)
	if err != nil {
		return fmt.Errorf("creating staging store: %w", err)
	}

	engine := whisper.NewProvider(whisper.Config{
		URL:     cfg.Whisper.URL,
		Model:   cfg.Whisper.Model,
		Timeout: cfg.Whisper.Timeout,
	})
	model := openai.NewProvider(openai.Config{
		BaseURL:     cfg.OpenAI.BaseURL,
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		Timeout:     cfg.OpenAI.Timeout,
	})

	svc := pipeline.New(engine, punctuate.New(model, cfg.OpenAI.Temperature), store, metrics, log)

	srv := server.New(cfg.Server, log)
	router := srv.GinEngine()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log.WithComponent("http")))
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxUploadMB))
	router.Use(middleware.BasicAuth(middleware.BasicAuthConfig{
		Username:  cfg.Auth.Username,
		Password:  cfg.Auth.Password,
		SkipPaths: []string{"/health", "/version"},
	}))

	router.POST("/transcribe", endpoint.Transcribe(svc))
	router.GET("/health", endpoint.Health(cfg.Base.Name, engine, model))
	router.GET("/version", endpoint.Version(cfg.Base.Name))

	if err := srv.Start(ctx); err != nil {
		return err
	}

	log.Info("Service ready", map[string]interface{}{
		"addr":    srv.Addr(),
		"whisper": cfg.Whisper.URL,
		"model":   cfg.OpenAI.Model,
	})

	<-ctx.Done()
	log.Info("Shutdown signal received")

	return srv.Stop(context.Background())
}
