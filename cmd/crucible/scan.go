package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crucible-sec/crucible/internal/config"
	"github.com/crucible-sec/crucible/internal/enhancement"
	"github.com/crucible-sec/crucible/internal/llm"
	"github.com/crucible-sec/crucible/internal/llm/providers"
	"github.com/crucible-sec/crucible/internal/report"
	"github.com/crucible-sec/crucible/internal/scan"
	"github.com/crucible-sec/crucible/internal/target"
	"github.com/crucible-sec/crucible/internal/types"
	"github.com/crucible-sec/crucible/internal/vulnerability"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a vulnerability scan against a target",
	Long: `Run a full red-teaming scan: synthesize attacks per vulnerability
category, enhance them, send them to the target, and score the responses.

Examples:
  # Scan an HTTP endpoint with defaults from crucible.yaml
  crucible scan --target-url https://chat.example.com/api/respond

  # Two categories, three attacks each, sequential execution
  crucible scan --target-url https://chat.example.com/api/respond \
    --vulnerabilities bias,sql_injection --attacks 3 --sync

  # Weighted enhancement mix and JSON output
  crucible scan --target-url https://chat.example.com/api/respond \
    --enhancements rot13=0.5,jailbreak_crescendo=0.5 --output json`,
	Args: cobra.NoArgs,
	RunE: runScanCommand,
}

var (
	scanTargetURL       string
	scanAttacks         int
	scanVulnerabilities []string
	scanEnhancements    []string
	scanPurpose         string
	scanSystemPrompt    string
	scanAllowedEntities []string
	scanMaxTurns        int
	scanConcurrency     int
	scanRPS             float64
	scanSync            bool
	scanSeed            int64
	scanOutput          string
	scanShowDetail      bool
)

func init() {
	f := scanCmd.Flags()
	f.StringVar(&scanTargetURL, "target-url", "", "HTTP target endpoint (overrides config)")
	f.IntVar(&scanAttacks, "attacks", 0, "Attacks per vulnerability category")
	f.StringSliceVar(&scanVulnerabilities, "vulnerabilities", nil, "Vulnerability categories to scan (default all)")
	f.StringSliceVar(&scanEnhancements, "enhancements", nil, "Enhancement weights as name=prob pairs (default uniform)")
	f.StringVar(&scanPurpose, "purpose", "", "Target system purpose, required by some categories")
	f.StringVar(&scanSystemPrompt, "system-prompt", "", "Target system prompt, used to sharpen attacks")
	f.StringSliceVar(&scanAllowedEntities, "allowed-entities", nil, "Entities the target may legitimately access")
	f.IntVar(&scanMaxTurns, "max-turns", 0, "Turn budget for multi-turn attacks")
	f.IntVar(&scanConcurrency, "concurrency", 0, "Concurrent attack pipelines")
	f.Float64Var(&scanRPS, "rps", 0, "Rate limit on external calls, requests per second")
	f.BoolVar(&scanSync, "sync", false, "Force sequential execution")
	f.Int64Var(&scanSeed, "seed", 0, "Seed for technique sampling")
	f.StringVar(&scanOutput, "output", "table", "Output format: table or json")
	f.BoolVar(&scanShowDetail, "detail", false, "Include the per-attack detail table")
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	scanCfg, err := buildScanConfig()
	if err != nil {
		return err
	}

	attacker, err := newGenerator(cfg.LLM.Attacker)
	if err != nil {
		return err
	}
	judge, err := newGenerator(cfg.LLM.Judge)
	if err != nil {
		return err
	}

	scanner := scan.NewScanner(attacker, judge, logger)

	// A cancelled scan still carries partial results worth showing.
	res, err := scanner.Run(cmd.Context(), scanCfg)
	if err != nil && types.CodeOf(err) != types.SCAN_CANCELLED {
		return err
	}
	if res == nil {
		return err
	}

	switch scanOutput {
	case "json":
		if err := report.WriteJSON(os.Stdout, res); err != nil {
			return err
		}
	case "table":
		renderer := report.NewRenderer(nil)
		fmt.Fprint(cmd.OutOrStdout(), renderer.SummaryTable(res))
		if scanShowDetail {
			fmt.Fprint(cmd.OutOrStdout(), renderer.DetailTable(res))
		}
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("output must be table or json, got %q", scanOutput))
	}

	if res.State == scan.StateCancelled {
		return types.NewError(types.SCAN_CANCELLED, "scan cancelled, partial results shown")
	}
	return nil
}

// buildScanConfig merges config-file scan settings with command-line
// overrides. Flags win.
func buildScanConfig() (scan.Config, error) {
	sc := cfg.Scan

	if scanTargetURL != "" {
		cfg.Target.Kind = "http"
		cfg.Target.URL = scanTargetURL
	}
	tgt, err := newTarget(cfg.Target)
	if err != nil {
		return scan.Config{}, err
	}

	out := scan.Config{
		Target:                  tgt,
		AttacksPerVulnerability: sc.AttacksPerVulnerability,
		Purpose:                 sc.Purpose,
		SystemPrompt:            sc.SystemPrompt,
		AllowedEntities:         sc.AllowedEntities,
		MaxTurns:                sc.MaxTurns,
		MaxConcurrency:          sc.MaxConcurrency,
		RequestsPerSecond:       sc.RequestsPerSecond,
		Sync:                    sc.Sync,
		Seed:                    sc.Seed,
	}
	for _, cat := range sc.Vulnerabilities {
		out.Vulnerabilities = append(out.Vulnerabilities, vulnerability.Category(cat))
	}
	if len(sc.Enhancements) > 0 {
		out.Enhancements = enhancement.Distribution(sc.Enhancements)
	}

	if scanAttacks > 0 {
		out.AttacksPerVulnerability = scanAttacks
	}
	if len(scanVulnerabilities) > 0 {
		out.Vulnerabilities = nil
		for _, cat := range scanVulnerabilities {
			out.Vulnerabilities = append(out.Vulnerabilities, vulnerability.Category(cat))
		}
	}
	if len(scanEnhancements) > 0 {
		dist, err := parseEnhancements(scanEnhancements)
		if err != nil {
			return scan.Config{}, err
		}
		out.Enhancements = dist
	}
	if scanPurpose != "" {
		out.Purpose = scanPurpose
	}
	if scanSystemPrompt != "" {
		out.SystemPrompt = scanSystemPrompt
	}
	if len(scanAllowedEntities) > 0 {
		out.AllowedEntities = scanAllowedEntities
	}
	if scanMaxTurns > 0 {
		out.MaxTurns = scanMaxTurns
	}
	if scanConcurrency > 0 {
		out.MaxConcurrency = scanConcurrency
	}
	if scanRPS > 0 {
		out.RequestsPerSecond = scanRPS
	}
	if scanSync {
		out.Sync = true
	}
	if scanSeed != 0 {
		out.Seed = scanSeed
	}

	return out, nil
}

// parseEnhancements parses name=prob pairs into a distribution.
func parseEnhancements(pairs []string) (enhancement.Distribution, error) {
	dist := make(enhancement.Distribution, len(pairs))
	for _, pair := range pairs {
		name, prob, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, types.NewError(types.INVALID_DISTRIBUTION,
				fmt.Sprintf("enhancement weight %q is not name=prob", pair))
		}
		p, err := strconv.ParseFloat(prob, 64)
		if err != nil {
			return nil, types.NewError(types.INVALID_DISTRIBUTION,
				fmt.Sprintf("enhancement weight %q has a non-numeric probability", pair))
		}
		dist[name] = p
	}
	return dist, nil
}

func newGenerator(pc config.ProviderConfig) (llm.Generator, error) {
	opts := providers.Config{
		APIKey:    pc.APIKey,
		Model:     pc.Model,
		BaseURL:   pc.BaseURL,
		ServerURL: pc.ServerURL,
	}

	switch pc.Provider {
	case "openai":
		return providers.NewOpenAI(opts)
	case "anthropic":
		return providers.NewAnthropic(opts)
	case "ollama":
		return providers.NewOllama(opts)
	default:
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("unknown provider: %s", pc.Provider))
	}
}

func newTarget(tc config.TargetConfig) (target.Target, error) {
	switch tc.Kind {
	case "http":
		if tc.URL == "" {
			return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, "target.url is required")
		}
		var opts []target.HTTPOption
		for k, v := range tc.Headers {
			opts = append(opts, target.WithHeader(k, v))
		}
		if tc.Timeout > 0 {
			opts = append(opts, target.WithTimeout(tc.Timeout))
		}
		return target.NewHTTPTarget("http", tc.URL, opts...), nil
	case "model":
		gen, err := newGenerator(tc.Model)
		if err != nil {
			return nil, err
		}
		return target.NewModelTarget(gen, tc.SystemPrompt), nil
	default:
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("target.kind must be http or model, got %q", tc.Kind))
	}
}
