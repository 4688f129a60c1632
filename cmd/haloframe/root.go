package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"haloframe/internal/config"
	"haloframe/internal/statuscode"
)

// Defaults applied after file, environment and flags.
const (
	defaultAddr      = ":8080"
	defaultLogLevel  = "info"
	defaultFrameRate = 60.0
)

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "haloframe",
		Short:         "Frame-driven subsystem lifecycle runner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Config file (.yaml, .yml, .json, .toml)")
	root.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error (defaults HALO_LOG_LEVEL or info)")

	run := &cobra.Command{
		Use:     "run",
		Short:   "Preload, initialize and tick the configured managers until interrupted",
		Example: "  haloframe run --assets-dir ~/game/bundles --max-frames 600\n  haloframe run --config haloframe.yaml --policy abort",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return runFrames(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}
	f := run.Flags()
	f.String("addr", "", "HTTP listen address for /status, /healthz, /readyz, /metrics (\"off\" disables)")
	f.Float64("frame-rate", 0, "Frames per second (default 60)")
	f.Float64("time-scale", 0, "Scale applied to frame deltas (default 1)")
	f.Int("max-frames", 0, "Shut down after this many running frames (0 = run until interrupted)")
	f.String("policy", "", "Fault policy: isolate|abort")
	f.Int("preload-budget", 0, "Frames to wait for preload before timing out a manager (0 = unlimited)")
	f.Int("release-budget", 0, "Frames to wait for release before timing out a manager (0 = unlimited)")
	f.String("assets-dir", "", "Directory of asset files to preload")
	f.String("assets-exts", "", "Comma-separated asset file extensions, e.g. .bundle,.pak")
	f.Int("assets-per-frame", 0, "Asset files loaded or unloaded per frame")
	f.String("assets-xor-key", "", "XOR key used to decode asset payloads")
	f.String("remote-url", "", "URL of a JSON settings document fetched during preload")
	f.Int("remote-timeout-ms", 0, "Timeout for the remote settings request in milliseconds")
	f.String("cors-origins", "", "Comma-separated allowed CORS origins (empty disables CORS)")

	codes := &cobra.Command{
		Use:   "codes",
		Short: "List framework status codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCodes(cmd.OutOrStdout())
		},
	}

	root.AddCommand(run, codes)
	return root
}

// resolveConfig layers the config file, HALO_* environment variables and
// explicitly set flags, then fills defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		c, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	fs := cmd.Flags()
	str := func(name string, dst *string) {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if fs.Changed(name) {
			*dst, _ = fs.GetInt(name)
		}
	}
	flt := func(name string, dst *float64) {
		if fs.Changed(name) {
			*dst, _ = fs.GetFloat64(name)
		}
	}
	csv := func(name string, dst *[]string) {
		if fs.Changed(name) {
			v, _ := fs.GetString(name)
			*dst = splitCSV(v)
		}
	}
	str("log-level", &cfg.LogLevel)
	str("addr", &cfg.Addr)
	flt("frame-rate", &cfg.FrameRate)
	flt("time-scale", &cfg.TimeScale)
	num("max-frames", &cfg.MaxFrames)
	str("policy", &cfg.Policy)
	num("preload-budget", &cfg.PreloadBudget)
	num("release-budget", &cfg.ReleaseBudget)
	str("assets-dir", &cfg.AssetsDir)
	csv("assets-exts", &cfg.AssetsExts)
	num("assets-per-frame", &cfg.AssetsPerFrame)
	str("assets-xor-key", &cfg.AssetsXORKey)
	str("remote-url", &cfg.RemoteURL)
	num("remote-timeout-ms", &cfg.RemoteTimeoutMS)
	csv("cors-origins", &cfg.CORSOrigins)

	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = defaultFrameRate
	}
	return cfg, nil
}

func printCodes(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tOK")
	for _, c := range statuscode.All() {
		fmt.Fprintf(tw, "%d\t%s\t%t\n", uint16(c), c, c.OK())
	}
	return tw.Flush()
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
