// Package cli wires the pipeline, the store, the report formatters and the
// browser into the timetracer command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sadopc/timetracer/internal/config"
	"github.com/sadopc/timetracer/internal/logutil"
	"github.com/sadopc/timetracer/internal/metrics"
	"github.com/sadopc/timetracer/internal/store"
)

const envPrefix = "TIMETRACER"

// Version is set at build time with -ldflags "-X .../cli.Version=...".
var Version = "dev"

// ErrFindings is returned when validation reports error-severity findings.
// The findings themselves have already been printed.
var ErrFindings = errors.New("validation failed")

var (
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F39C12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// env is the state shared by every subcommand of one invocation.
type env struct {
	v       *viper.Viper
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	logger  *slog.Logger
	cfg     *config.Config
	metrics *metrics.Metrics

	// confirm asks a yes/no question; replaced in tests.
	confirm func(title string) (bool, error)
}

func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Run executes one command line and returns the process exit code.
func Run(args []string, in io.Reader, out, errOut io.Writer) int {
	return newEnv(in, out, errOut).run(args)
}

func newEnv(in io.Reader, out, errOut io.Writer) *env {
	return &env{
		v:       viper.New(),
		in:      in,
		out:     out,
		errOut:  errOut,
		logger:  logutil.Discard(),
		cfg:     config.DefaultConfig(),
		metrics: metrics.New(),
		confirm: huhConfirm,
	}
}

func (e *env) run(args []string) int {
	root := newRootCmd(e)
	root.SetArgs(args)
	root.SetIn(e.in)
	root.SetOut(e.out)
	root.SetErr(e.errOut)

	err := root.Execute()
	if path := strings.TrimSpace(e.v.GetString("metrics_file")); path != "" {
		if werr := e.metrics.WriteFile(path); werr != nil {
			e.logger.Error("metrics", "err", werr)
		}
	}
	if err == nil {
		return 0
	}
	if !errors.Is(err, ErrFindings) {
		fmt.Fprintln(e.errOut, errorStyle.Render("error: ")+err.Error())
	}
	return 1
}

func newRootCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "timetracer",
		Short:         "Validate, convert, store and report plain-text daily time logs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.init()
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "Converter config file (YAML).")
	pf.String("db", "", "SQLite database path (default ~/.config/timetracer/timetracer.db).")
	pf.String("log-level", "", "Logging level: debug|info|warn|error.")
	pf.String("log-format", "", "Logging format: text|json.")
	pf.String("metrics-file", "", "Write Prometheus metrics to this file on exit.")

	_ = e.v.BindPFlag("config", pf.Lookup("config"))
	_ = e.v.BindPFlag("db", pf.Lookup("db"))
	_ = e.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = e.v.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = e.v.BindPFlag("metrics_file", pf.Lookup("metrics-file"))

	e.v.SetDefault("log.level", "info")
	e.v.SetDefault("log.format", "text")
	e.v.SetEnvPrefix(envPrefix)
	e.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	e.v.AutomaticEnv()

	cmd.AddCommand(newValidateCmd(e))
	cmd.AddCommand(newConvertCmd(e))
	cmd.AddCommand(newCheckCmd(e))
	cmd.AddCommand(newImportCmd(e))
	cmd.AddCommand(newReportCmd(e))
	cmd.AddCommand(newBrowseCmd(e))
	cmd.AddCommand(newVersionCmd(e))

	return cmd
}

// init resolves the logger and the converter config from flags, env and
// defaults.
func (e *env) init() error {
	logger, err := logutil.New(logutil.LoggerConfig{
		Level:  e.v.GetString("log.level"),
		Format: e.v.GetString("log.format"),
		Output: e.errOut,
	})
	if err != nil {
		return err
	}
	e.logger = logger

	if path := strings.TrimSpace(e.v.GetString("config")); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		e.cfg = cfg
		e.logger.Debug("config loaded", "path", path, "grammar", cfg.Grammar)
	}
	return nil
}

func (e *env) openStore() (*store.Store, error) {
	path := strings.TrimSpace(e.v.GetString("db"))
	if path == "" {
		var err error
		if path, err = store.DefaultDBPath(); err != nil {
			return nil, err
		}
	}
	e.logger.Debug("opening store", "path", path)
	return store.New(path)
}
