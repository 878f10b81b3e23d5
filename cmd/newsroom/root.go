package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	newsroom "github.com/mrinaald/ai-newsroom"
	"github.com/mrinaald/ai-newsroom/agent"
	"github.com/mrinaald/ai-newsroom/config"
	"github.com/mrinaald/ai-newsroom/core"
	"github.com/mrinaald/ai-newsroom/graph"
	"github.com/mrinaald/ai-newsroom/internal/display"
	"github.com/mrinaald/ai-newsroom/logging"
	"github.com/mrinaald/ai-newsroom/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "newsroom [topic...]",
	Short: "Research a topic and write a Markdown report",
	Long: `newsroom runs a small multi-agent newsroom: a Supervisor routes the work
between a Researcher, who searches the web, and a Writer, who turns the
findings into a structured Markdown report.

The topic is taken from the arguments or asked for interactively.`,
	SilenceUsage: true,
	RunE:         runNewsroom,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()
	f.Int("recursion-limit", newsroom.DefaultStepBudget, "Maximum number of node invocations per run")
	f.String("config", "", "Path to a YAML config file")
	f.String("provider", "", "Model provider: ollama, openai, anthropic or mock")
	f.String("model", "", "Model name")
	f.String("base-url", "", "Provider base URL")
	f.String("strategy", "", "Routing strategy: deterministic or delegate")
	f.Bool("no-search", false, "Disable the Researcher's web search")
	f.String("log-level", "", "Log level: debug, info, warn or error")
	f.String("log-format", "", "Log format: text or json")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	f.Bool("plain", false, "Disable colours and Markdown rendering")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	f := cmd.Flags()
	path, _ := f.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)

	overrides := map[string]*string{
		"provider":     &cfg.Provider,
		"model":        &cfg.Model,
		"base-url":     &cfg.BaseURL,
		"strategy":     &cfg.Strategy,
		"log-level":    &cfg.Logging.Level,
		"log-format":   &cfg.Logging.Format,
		"metrics-addr": &cfg.Metrics.Addr,
	}
	for name, dst := range overrides {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	if f.Changed("recursion-limit") {
		cfg.StepBudget, _ = f.GetInt("recursion-limit")
	}
	if noSearch, _ := f.GetBool("no-search"); noSearch {
		cfg.Search.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runNewsroom(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	lc := cfg.LoggerConfig()
	lc.Output = cmd.ErrOrStderr()
	logger := logging.New(lc)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	if cfg.Metrics.Addr != "" {
		stop := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer stop()
	}

	nr, err := buildNewsroom(cfg, logger, collector)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	plain, _ := cmd.Flags().GetBool("plain")
	printer := display.NewPrinter(out, func(o *display.Options) {
		o.Plain = plain || !isTerminal(out)
	})
	printer.PrintBanner()

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		printer.Prompt("Enter your research topic: ")
		query, err = readLine(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read topic: %w", err)
		}
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runErr := stream(ctx, nr, query, printer)

	var budgetErr *core.StepBudgetError
	switch {
	case runErr == nil:
	case errors.As(runErr, &budgetErr):
		printer.Notice("Stopped: the step budget of %d node invocations was used up before the report was finished.", budgetErr.Budget)
		runErr = nil
	case errors.Is(runErr, context.Canceled):
		printer.Notice("Interrupted.")
	default:
		printer.Notice("Run failed: %v", runErr)
	}

	printer.PrintCompleted()
	return runErr
}

func buildNewsroom(cfg *config.Config, logger logging.Logger, collector *metrics.Collector) (*newsroom.Newsroom, error) {
	gen, err := cfg.NewGenerator(logger)
	if err != nil {
		return nil, err
	}
	search, err := cfg.NewSearch(logger)
	if err != nil {
		return nil, err
	}
	strategy, err := agent.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	callbacks := graph.NewCallbackManager()
	callbacks.RegisterCallback(graph.NewLoggingCallback(graph.CallbackAfterNode, logger))
	collector.Attach(callbacks)

	return newsroom.New(func(o *newsroom.Options) {
		o.Generator = gen
		o.Search = search
		o.Strategy = strategy
		o.StepBudget = cfg.StepBudget
		o.Retry = cfg.RetryPolicy()
		o.CallTimeout = cfg.CallTimeout
		o.Logger = logger
		o.Observer = collector
		o.Callbacks = callbacks
	})
}

func stream(ctx context.Context, nr *newsroom.Newsroom, query string, printer *display.Printer) error {
	steps, errs := nr.Stream(ctx, query)
	for s := range steps {
		printer.PrintStep(s)
	}
	return <-errs
}

func serveMetrics(addr string, reg *prometheus.Registry, logger logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err.Error())
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
