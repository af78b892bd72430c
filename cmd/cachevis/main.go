package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/ja7ad/cachevis/pkg/logparse"
	"github.com/ja7ad/cachevis/pkg/report"
	"github.com/ja7ad/cachevis/pkg/server"
	"github.com/ja7ad/cachevis/pkg/summary"
	"github.com/ja7ad/cachevis/pkg/tui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var version = "dev"

const stdinName = "-"

var errStdinRepeated = errors.New(`stdin ("-") can be read only once`)

type opts struct {
	// logging
	logLevel  string
	logFormat string

	// report
	format      string
	writePolicy string

	// outputs
	csvPath      string
	jsonPath     string
	htmlPath     string
	markdownPath string
}

type serveOpts struct {
	addr            string
	root            string
	logPath         string
	shutdownTimeout time.Duration
	debounce        time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o opts

	root := &cobra.Command{
		Use:   "cachevis",
		Short: "Cache simulation log visualizer",
		Long: `cachevis groups the log of a cache simulator into one block of
entries per configuration header and compares the hit rate of every
configuration.

A configuration block starts with "# Config:" followed by "# Field: value"
lines (Cache Size, Block Size, Associativity, Replacement Policy, Write
Policy). Every non-comment line after the header is one access entry; entries
containing "Hit" count as hits.

Examples:
  cachevis report sim.log
  cachevis report --write-policy WB --format markdown sim.log
  simulator | cachevis report --csv out/run.csv -
  cachevis view sim.log
  cachevis serve --root ./web --log sim.log`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(o.logLevel, o.logFormat, cmd.ErrOrStderr()))
		},
	}

	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&o.logFormat, "log-format", "text", "log format (text, json)")

	root.AddCommand(newReportCmd(&o), newViewCmd(), newServeCmd(), newVersionCmd())
	return root
}

func newReportCmd(o *opts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [FILE|-]...",
		Short: "Summarize one or more simulation logs",
		Long: `Parse the given logs (stdin when none or "-") and print the
per-configuration comparison. Multiple files are concatenated in argument
order into one run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), *o, args, cmd.OutOrStdout(), cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVarP(&o.format, "format", "f", string(report.FormatTable), "stdout format (table, csv, json, html, markdown)")
	cmd.Flags().StringVarP(&o.writePolicy, "write-policy", "w", string(summary.FilterAll), "write policy filter (All, WT, WB)")
	cmd.Flags().StringVar(&o.csvPath, "csv", "", "also write the comparison to a CSV file")
	cmd.Flags().StringVar(&o.jsonPath, "json", "", "also write groups and summary to a JSON file")
	cmd.Flags().StringVar(&o.htmlPath, "html", "", "also write an HTML report with charts")
	cmd.Flags().StringVar(&o.markdownPath, "markdown", "", "also write a Markdown report")
	return cmd
}

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view [FILE|-]",
		Short: "Browse a simulation log interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, source, err := loadLogs(cmd.Context(), args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			progOpts := []tea.ProgramOption{tea.WithAltScreen()}
			if len(args) == 0 || args[0] == stdinName {
				// stdin held the log; keys come from the terminal
				progOpts = append(progOpts, tea.WithInputTTY())
			}
			_, err = tea.NewProgram(tui.New(source, groups), progOpts...).Run()
			return err
		},
	}
}

func newServeCmd() *cobra.Command {
	var so serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a static visualizer directory and live log summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.NewConfig(server.Config{
				Addr:            so.addr,
				Root:            so.root,
				LogPath:         so.logPath,
				ShutdownTimeout: so.shutdownTimeout,
				Debounce:        so.debounce,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.New(cfg, slog.Default()).Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&so.addr, "addr", "a", server.DefaultAddr, "listen address")
	cmd.Flags().StringVarP(&so.root, "root", "r", ".", "directory to serve")
	cmd.Flags().StringVarP(&so.logPath, "log", "l", "", "simulation log exposed at /api/groups and /report")
	cmd.Flags().DurationVar(&so.shutdownTimeout, "shutdown-timeout", server.DefaultShutdownTimeout, "graceful shutdown timeout")
	cmd.Flags().DurationVar(&so.debounce, "debounce", 0, "log change debounce (0 = default)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "cachevis", version)
		},
	}
}

func runReport(ctx context.Context, o opts, args []string, stdout io.Writer, stdin io.Reader) error {
	format, err := report.ParseFormat(o.format)
	if err != nil {
		return err
	}
	filter, err := summary.ParseWritePolicy(o.writePolicy)
	if err != nil {
		return err
	}

	groups, source, err := loadLogs(ctx, args, stdin)
	if err != nil {
		return err
	}
	slog.Debug("parsed", "source", source, "groups", len(groups))
	if len(groups) == 0 {
		slog.Warn(report.NoConfigurations, "source", source)
	}

	data := report.Data{Source: source, Groups: groups, Filter: filter}

	outputs := []struct {
		path   string
		format report.Format
	}{
		{o.csvPath, report.FormatCSV},
		{o.jsonPath, report.FormatJSON},
		{o.htmlPath, report.FormatHTML},
		{o.markdownPath, report.FormatMarkdown},
	}
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		if err := writeFile(out.path, out.format, data); err != nil {
			return err
		}
		slog.Info("report written", "format", out.format, "path", out.path)
	}

	if format == report.FormatMarkdown && isTerminal(stdout) && len(groups) > 0 {
		return renderMarkdown(stdout, data)
	}
	return report.Write(stdout, format, data)
}

// loadLogs parses every path concurrently and concatenates the groups in
// argument order. No paths, or "-", reads stdin.
func loadLogs(ctx context.Context, paths []string, stdin io.Reader) ([]logparse.Group, string, error) {
	if len(paths) == 0 {
		paths = []string{stdinName}
	}
	stdins := 0
	for _, p := range paths {
		if p == stdinName {
			stdins++
		}
	}
	if stdins > 1 {
		return nil, "", errStdinRepeated
	}

	results := make([][]logparse.Group, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			groups, err := parseLog(p, stdin)
			if err != nil {
				return fmt.Errorf("%s: %w", displayName(p), err)
			}
			results[i] = groups
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, "", err
	}

	groups := make([]logparse.Group, 0)
	names := make([]string, len(paths))
	for i, r := range results {
		groups = append(groups, r...)
		names[i] = displayName(paths[i])
	}
	return groups, strings.Join(names, ", "), nil
}

func parseLog(path string, stdin io.Reader) ([]logparse.Group, error) {
	if path == stdinName {
		if stdin == nil {
			return nil, errors.New("no stdin")
		}
		return logparse.ParseReader(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return logparse.ParseReader(f)
}

func displayName(path string) string {
	if path == stdinName {
		return "stdin"
	}
	return path
}

func writeFile(path string, f report.Format, d report.Data) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, f, d); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func renderMarkdown(w io.Writer, d report.Data) error {
	var buf bytes.Buffer
	if err := report.WriteMarkdown(&buf, d); err != nil {
		return err
	}

	width := 100
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			width = tw
		}
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return err
	}
	out, err := r.Render(buf.String())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
