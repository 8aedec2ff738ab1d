// planctl runs the planning pipeline from the command line against a
// local catalog, without the HTTP server. Useful for trying specs and
// inspecting plans.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ignite/adplanner/internal/catalog"
	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/creative"
	"github.com/ignite/adplanner/internal/domain"
	"github.com/ignite/adplanner/internal/events"
	"github.com/ignite/adplanner/internal/llm"
	"github.com/ignite/adplanner/internal/orchestrator"
	"github.com/ignite/adplanner/internal/pkg/logger"
	"github.com/ignite/adplanner/internal/planner"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "path to config file")
		specPath   = flag.String("spec", "", "path to a CampaignSpec JSON file")
		request    = flag.String("request", "", "natural-language campaign request (needs bedrock enabled)")
		limit      = flag.Int("limit", 0, "product limit override")
		showEvents = flag.Bool("events", false, "print the run's event trail")
	)
	flag.Parse()

	if (*specPath == "") == (*request == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -spec or -request is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fatal("load config: %v", err)
	}
	logger.SetLevel(logger.WARN)

	ctx := context.Background()

	cat, err := catalog.LoadCSV(cfg.Catalog.CSVPath)
	if err != nil {
		fatal("load catalog: %v", err)
	}

	var completer llm.Completer
	if cfg.Bedrock.Enabled {
		bedrock, err := llm.NewBedrockClient(ctx, cfg.Bedrock)
		if err != nil {
			fatal("init bedrock: %v", err)
		}
		completer = bedrock
	}

	var spec domain.CampaignSpec
	if *specPath != "" {
		data, err := os.ReadFile(*specPath)
		if err != nil {
			fatal("read spec: %v", err)
		}
		if err := json.Unmarshal(data, &spec); err != nil {
			fatal("parse spec: %v", err)
		}
	} else {
		if completer == nil {
			fatal("-request requires bedrock.enabled in the config")
		}
		spec, err = llm.ParseIntent(ctx, completer, *request)
		if err != nil {
			fatal("parse request: %v", err)
		}
	}

	policy, err := creative.LoadPolicy(cfg.Creative.PolicyPath)
	if err != nil {
		fatal("load creative policy: %v", err)
	}
	generator := creative.NewGenerator(completer, policy, creative.NewValidator(cfg.QA), cfg.Creative, cfg.QA)
	sink := events.NewMemorySink()

	orch := orchestrator.New(cat, generator, completer, sink, cfg.Planner)
	result, err := orch.Run(ctx, orchestrator.Request{Spec: spec, ProductLimit: *limit})
	if err != nil {
		fatal("run failed (%s): %v", planner.KindOf(err), err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fatal("encode result: %v", err)
	}
	if *showEvents {
		fmt.Fprintln(os.Stderr, "--- events ---")
		for _, e := range sink.ForRun(result.RunID) {
			fmt.Fprintf(os.Stderr, "%s %s %s %s\n", e.At.Format("15:04:05"), e.Type, e.Stage, e.Message)
		}
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
