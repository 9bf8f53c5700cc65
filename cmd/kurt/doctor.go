package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/koscakluka/kurt/internal/config"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	deepgramAPIURL = "https://api.deepgram.com"
	geminiAPIURL   = "https://generativelanguage.googleapis.com"
	openAIAPIURL   = "https://api.openai.com/v1"

	probeTimeout = 5 * time.Second
)

var errChecksFailed = errors.New("some checks failed")

func newDoctorCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check API keys and service reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			d := doctor{
				out:         cmd.OutOrStdout(),
				lookup:      os.LookupEnv,
				httpClient:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
				deepgramURL: deepgramAPIURL,
			}
			return d.run(cmd.Context(), cfg)
		},
	}
}

type doctor struct {
	out         io.Writer
	lookup      func(string) (string, bool)
	httpClient  *http.Client
	deepgramURL string
}

type checkResult struct {
	name   string
	err    error
	detail string
}

func (d doctor) run(ctx context.Context, cfg config.Config) error {
	llmURL := cfg.LLM.BaseURL
	llmKeys := []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	if cfg.LLM.Provider == config.ProviderOpenAI {
		llmKeys = []string{"OPENAI_API_KEY"}
		if llmURL == "" {
			llmURL = openAIAPIURL
		}
	} else if llmURL == "" {
		llmURL = geminiAPIURL
	}

	results := []checkResult{
		d.checkKey("DEEPGRAM_API_KEY"),
		d.checkKey(llmKeys...),
		d.checkReachable(ctx, "deepgram", d.deepgramURL),
		d.checkReachable(ctx, cfg.LLM.Provider, llmURL),
	}

	w := tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	failed := false
	for _, result := range results {
		status := "OK"
		detail := result.detail
		if result.err != nil {
			status, detail, failed = "FAIL", result.err.Error(), true
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", status, result.name, detail)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if failed {
		return errChecksFailed
	}
	return nil
}

// checkKey passes when any of names is set.
func (d doctor) checkKey(names ...string) checkResult {
	for _, name := range names {
		if value, ok := d.lookup(name); ok && value != "" {
			return checkResult{name: name, detail: "set"}
		}
	}
	return checkResult{name: names[0], err: errors.New("not set")}
}

// checkReachable passes on any HTTP response; only transport failures
// count.
func (d doctor) checkReachable(ctx context.Context, name, url string) checkResult {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	result := checkResult{name: name + " reachable"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.err = fmt.Errorf("invalid url %q: %w", url, err)
		return result
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		result.err = err
		return result
	}
	resp.Body.Close()
	result.detail = fmt.Sprintf("%s (%d)", url, resp.StatusCode)
	return result
}
