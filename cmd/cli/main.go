package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pep299/daily-news-digest/internal/application"
	"github.com/pep299/daily-news-digest/internal/infrastructure"
	"github.com/pep299/daily-news-digest/internal/service"
)

// Version information (set by build flags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const (
	exitOK            = 0
	exitNoChannel     = 1
	exitDeliveryError = 2
)

// exitError carries a process exit status out of a command
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type options struct {
	envFile  string
	logLevel string
	strict   bool
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(stderr, "❌ %v\n", err)
	return 1
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "daily-news-digest",
		Short: "Daily News Digest CLI",
		Long: `Daily News Digest CLI

Fetches today's global headlines and AI industry news, summarizes them with
DeepSeek and pushes the digest through WeChat, email or PushPlus.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd, opts, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.Flags().StringVar(&opts.envFile, "env-file", ".env", "Path to the .env configuration file")
	root.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	root.Flags().BoolVar(&opts.strict, "strict", false, "Exit with status 2 when delivery fails")

	root.AddCommand(
		&cobra.Command{
			Use:   "setup",
			Short: "Show how to configure a delivery channel",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprint(stdout, infrastructure.SetupGuide())
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(stdout, "Daily News Digest CLI\n")
				fmt.Fprintf(stdout, "Version: %s\n", Version)
				fmt.Fprintf(stdout, "Commit: %s\n", Commit)
				fmt.Fprintf(stdout, "Build Time: %s\n", BuildTime)
			},
		},
	)

	return root
}

func runDigest(cmd *cobra.Command, opts *options, stdout, stderr io.Writer) error {
	banner := strings.Repeat("=", 50)
	fmt.Fprintln(stdout, banner)
	fmt.Fprintln(stdout, "🚀 每日新闻推送程序启动")
	fmt.Fprintln(stdout, banner)

	cfg, err := infrastructure.Load(opts.envFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	strict := opts.strict || cfg.DeliveryStrict

	logger := infrastructure.NewLogger(cfg.LogLevel, stderr)
	logger.Info().Msg("📋 步骤0：加载配置...")
	if cfg.EnvFile != "" {
		logger.Info().Msgf("✅ 已加载配置文件: %s", cfg.EnvFile)
	} else {
		logger.Warn().Msg("⚠️  警告：未找到.env配置文件，将使用系统环境变量")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := application.New(cfg, logger, stdout)
	report, err := app.Digest.Run(ctx)
	if errors.Is(err, service.ErrNoChannel) {
		fmt.Fprint(stdout, infrastructure.SetupGuide())
		fmt.Fprintln(stdout, "\n❌ 程序终止：请先配置推送方式")
		return &exitError{code: exitNoChannel}
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "\n"+banner)
	if !report.Delivery.OK && strict {
		return &exitError{code: exitDeliveryError}
	}
	return nil
}
