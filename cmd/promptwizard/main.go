// Package main provides a command-line interface for the promptwizard
// library: it assembles an optimization job from flags, reports what is still
// missing, and optionally submits the job and tails the live stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/weave-labs/promptwizard"
	"github.com/weave-labs/promptwizard/config"
	"github.com/weave-labs/promptwizard/roles"
	"github.com/weave-labs/promptwizard/session"
	"github.com/weave-labs/promptwizard/utils"
	"github.com/weave-labs/promptwizard/wizard"
)

// cmdFlags holds all command-line flags.
type cmdFlags struct {
	apiBase     string
	projectName string
	useCase     string
	dataset     string
	mappings    string
	metrics     string
	provider    string
	model       string
	apiKey      string
	optimizer   string
	logLevel    string
	timeout     time.Duration
	check       bool
}

func parseFlags() *cmdFlags {
	flags := &cmdFlags{}
	flag.StringVar(&flags.apiBase, "api-base", "", "Optimization service base URL (default from WIZARD_API_BASE)")
	flag.StringVar(&flags.projectName, "project", "cli-run", "Project name to request")
	flag.StringVar(&flags.useCase, "use-case", "qa", "Use case (qa, rag, custom)")
	flag.StringVar(&flags.dataset, "dataset", "", "Server-side dataset path")
	flag.StringVar(&flags.mappings, "mappings", "", "Field mappings as field=column pairs, comma separated")
	flag.StringVar(&flags.metrics, "metrics", "exact_match", "Evaluation metric IDs, comma separated")
	flag.StringVar(&flags.provider, "provider", "", "Model provider (openai, anthropic, groq, mistral, deepseek, ollama)")
	flag.StringVar(&flags.model, "model", "", "Model name (provider default when empty)")
	flag.StringVar(&flags.apiKey, "api-key", "", "API key for the provider")
	flag.StringVar(&flags.optimizer, "optimizer", "meta_prompt", "Optimization strategy ID")
	flag.StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.DurationVar(&flags.timeout, "timeout", 30*time.Minute, "How long to wait for the optimization to finish")
	flag.BoolVar(&flags.check, "check", false, "Only report form readiness, do not submit")
	flag.Parse()
	return flags
}

func main() {
	flags := parseFlags()

	w, err := buildWizard(flags)
	if err != nil {
		exitWithError("Error preparing wizard: %v\n", err)
	}

	if missing := w.MissingRequirements(); len(missing) > 0 {
		fmt.Println("The job is not ready to submit:")
		for _, m := range missing {
			fmt.Printf("  - %s\n", m)
		}
		if flags.check {
			os.Exit(1)
		}
		os.Exit(1)
	}
	if flags.check {
		fmt.Println("The job is ready to submit.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), flags.timeout)
	defer cancel()
	runOptimization(ctx, w, flags.projectName)
}

func exitWithError(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

// buildWizard assembles the wizard form from flags and stdin.
func buildWizard(flags *cmdFlags) (*promptwizard.Wizard, error) {
	var opts []config.ConfigOption
	if flags.apiBase != "" {
		opts = append(opts, config.SetAPIBase(flags.apiBase))
	}
	opts = append(opts, config.SetLogLevel(getLogLevel(flags.logLevel)))

	w, err := promptwizard.New(opts...)
	if err != nil {
		return nil, err
	}

	w.Form.Prompt = getPrompt()
	w.Form.UseCase = wizard.UseCase(flags.useCase)
	w.Form.DatasetPath = flags.dataset
	for field, column := range parseMappings(flags.mappings) {
		w.Form.FieldMappings[field] = column
	}
	for _, id := range splitList(flags.metrics) {
		w.Form.SelectMetric(id)
	}
	w.Form.SelectedOptimizer = flags.optimizer

	if flags.provider != "" {
		cfg, err := w.Models().AddConfig(flags.provider, roles.RoleBoth)
		if err != nil {
			return nil, err
		}
		if flags.model != "" {
			cfg.ModelName = flags.model
		}
		cfg.APIKey = flags.apiKey
	}
	return w, nil
}

// getPrompt gets the prompt from command-line arguments.
func getPrompt() string {
	if len(flag.Args()) < 1 {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [flags] <prompt>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	return strings.Join(flag.Args(), " ")
}

// runOptimization submits the job and tails the stream until it terminates.
func runOptimization(ctx context.Context, w *promptwizard.Wizard, projectName string) {
	stream, err := w.Submit(ctx, projectName)
	if err != nil {
		exitWithError("Error submitting job: %v\n", err)
	}

	select {
	case <-stream.Done():
	case <-ctx.Done():
		w.Cancel()
		<-stream.Done()
	}

	s := stream.Session()
	printOutcome(s)
	if s.Status != session.StatusCompleted {
		os.Exit(1)
	}
}

func printOutcome(s session.Session) {
	for _, entry := range s.Logs {
		fmt.Printf("[%s] %s: %s\n", entry.Level, entry.Source, entry.Message)
	}

	switch s.Status {
	case session.StatusCompleted:
		fmt.Println("Optimization complete.")
		if s.Result != nil {
			fmt.Printf("\nOriginal prompt:\n%s\n\nOptimized prompt:\n%s\n",
				s.Result.OriginalPrompt, s.Result.OptimizedPrompt)
		}
	case session.StatusCancelled:
		fmt.Println("Optimization cancelled.")
	case session.StatusFailed:
		if s.Cause == session.CauseTransport {
			fmt.Printf("Connection lost: %s\n", s.Error)
		} else {
			fmt.Printf("Optimization failed: %s\n", s.Error)
		}
	default:
		fmt.Printf("Session ended in state %s\n", s.Status)
	}
}

// parseMappings parses "question=q,answer=a" into a map.
func parseMappings(raw string) map[string]string {
	mappings := make(map[string]string)
	for _, pair := range splitList(raw) {
		field, column, ok := strings.Cut(pair, "=")
		if ok {
			mappings[strings.TrimSpace(field)] = strings.TrimSpace(column)
		}
	}
	return mappings
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getLogLevel(level string) utils.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return utils.LogLevelDebug
	case "info":
		return utils.LogLevelInfo
	case "error":
		return utils.LogLevelError
	default:
		return utils.LogLevelWarn
	}
}
