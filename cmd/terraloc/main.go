package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hristo-banchev/terraloc-ingest/internal/config"
	"github.com/hristo-banchev/terraloc-ingest/internal/ingest"
	"github.com/hristo-banchev/terraloc-ingest/internal/metrics"
	"github.com/hristo-banchev/terraloc-ingest/internal/metrics/prompush"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "github.com/hristo-banchev/terraloc-ingest/internal/storage/all"
)

// main is the entry point for the terraloc binary. It loads the ingestion
// registry, optionally initializes a metrics backend, and executes the
// streaming run for the named ingestion.
func main() {
	var (
		cfgPath           string
		name              string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/ingestions.json", "ingestion registry JSON path")
	flag.StringVar(&name, "name", "", "ingestion name to run (required)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (e.g. pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	reg, err := config.LoadRegistryFile(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	if validate {
		hasError := false
		for _, n := range reg.Names() {
			in, _ := reg.Lookup(n)
			for _, iss := range config.ValidateIngestion(in) {
				fmt.Fprintf(os.Stderr, "%s: %s: %s: %s\n", n, iss.Severity, iss.Path, iss.Message)
				if iss.Severity == config.SeverityError {
					hasError = true
				}
			}
		}
		if hasError {
			log.Printf("Configuration is invalid: %v", cfgPath)
			os.Exit(1)
		}
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	if name == "" {
		fatalf("-name is required (available: %v)", reg.Names())
	}

	// Decide metrics backend: flag → env → default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(name, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, name)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "", "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	m, err := ingest.RunNamed(ctx, reg, name, *verbose)
	if m != nil {
		log.Printf("ingest: dataset=%s %s", name, m)
	}
	if err != nil {
		log.Fatalf("ingest: dataset=%s failed: %v", name, err)
	}
	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
