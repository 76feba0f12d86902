// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command kestreld starts the Kestrel clash API server.
//
// Usage:
//
//	go run ./cmd/kestreld
//	go run ./cmd/kestreld -config kestreld.yaml
//	go run ./cmd/kestreld -listen :9090 -debug
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/healthz
//
//	# Prometheus metrics
//	curl http://localhost:8080/metrics
//
//	# Check a model
//	curl -X POST http://localhost:8080/v1/clash/check \
//	  -H "Content-Type: application/json" \
//	  --data-binary @frame.json
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gopkg.in/yaml.v3"

	"github.com/KestrelSteel/KestrelFOSS/pkg/logging"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/engine"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/handlers"
	"github.com/KestrelSteel/KestrelFOSS/services/clash/observability"
)

// serverConfig is the kestreld config file schema.
type serverConfig struct {
	Listen        string `yaml:"listen"`
	MaxIterations int    `yaml:"max_iterations"`
	LogLevel      string `yaml:"log_level"`

	// TraceExporter selects span export: "none", "stdout", or "otlp".
	TraceExporter string `yaml:"trace_exporter"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		Listen:        ":8080",
		MaxIterations: 5,
		LogLevel:      "info",
		TraceExporter: "none",
		OTLPEndpoint:  "localhost:4317",
	}
}

func loadServerConfig(path string, logger *logging.Logger) serverConfig {
	cfg := defaultServerConfig()
	if path == "" {
		return cfg
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Failed to read config file", "path", path, "error", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		logger.Error("Failed to parse config file", "path", path, "error", err)
		os.Exit(1)
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	return cfg
}

func main() {
	configPath := flag.String("config", "", "Path to kestreld config YAML")
	listen := flag.String("listen", "", "Listen address, overrides config")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	boot := logging.New(logging.Config{Level: logging.LevelInfo, Service: "kestreld", JSON: true})
	cfg := loadServerConfig(*configPath, boot)
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		Service: "kestreld",
		JSON:    true,
	})

	shutdown, err := observability.InitTracing(context.Background(), observability.TraceConfig{
		ServiceName:  "kestreld",
		Exporter:     cfg.TraceExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		OTLPInsecure: true,
	})
	if err != nil {
		logger.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer shutdown(context.Background())

	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	eng, err := engine.New(
		engine.WithMaxIterations(cfg.MaxIterations),
		engine.WithLogger(logger.Slog()),
	)
	if err != nil {
		logger.Error("Failed to build engine", "error", err)
		os.Exit(1)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("kestreld"))
	if *debug {
		router.Use(gin.Logger())
	}

	router.GET("/healthz", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterRoutes(router.Group("/v1"), eng)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("Shutting down kestreld")
		os.Exit(0)
	}()

	logger.Info("Starting kestreld", "address", cfg.Listen, "max_iterations", cfg.MaxIterations)
	if err := router.Run(cfg.Listen); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
