package cmd

import (
	"context"
	"errors"
	stdlog "log"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.resproc.io/resproc/errext"
	"go.resproc.io/resproc/errext/exitcodes"
	"go.resproc.io/resproc/lib/consts"
)

var bannerColor = color.New(color.FgCyan)

// This is to keep all fields needed for the main/root resproc command
type rootCommand struct {
	ctx     context.Context
	logger  *logrus.Logger
	cmd     *cobra.Command
	logFmt  string
	verbose bool
	quiet   bool
	noColor bool
}

func newRootCommand(ctx context.Context, logger *logrus.Logger) *rootCommand {
	c := &rootCommand{
		ctx:    ctx,
		logger: logger,
	}
	// the base command when called without any subcommands.
	c.cmd = &cobra.Command{
		Use:   "resproc",
		Short: "process Android resources for packaging",
		Long: bannerColor.Sprintf("resproc v%s", consts.Version) + `

resproc merges aapt symbol tables across package namespaces, generates
per-package R.java sources and assembles the packaged resource archives.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	c.cmd.PersistentFlags().AddFlagSet(c.rootCmdPersistentFlagSet())
	return c
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, args []string) error {
	if err := c.setupLogger(); err != nil {
		return err
	}
	stdlog.SetOutput(c.logger.Writer())
	c.logger.Debugf("resproc version: v%s", consts.Version)
	return nil
}

func (c *rootCommand) setupLogger() error {
	if c.verbose {
		c.logger.SetLevel(logrus.DebugLevel)
	}
	if c.quiet {
		c.logger.SetLevel(logrus.WarnLevel)
	}

	switch c.logFmt {
	case "json":
		c.logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		stderrTTY := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		c.logger.SetOutput(colorable.NewColorableStderr())
		c.logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   stderrTTY && !c.noColor,
			DisableColors: c.noColor || !stderrTTY,
		})
	default:
		return errext.WithExitCodeIfNone(
			errors.New(`invalid log format, use "text" or "json"`), exitcodes.InvalidConfig)
	}
	return nil
}

func (c *rootCommand) rootCmdPersistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&c.quiet, "quiet", "q", false, "log only warnings and errors")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	flags.StringVar(&c.logFmt, "log-format", "", `log output format, "text" (default) or "json"`)
	return flags
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := &logrus.Logger{
		Out:       os.Stderr,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}

	c := newRootCommand(ctx, logger)
	c.cmd.AddCommand(
		getProcessCmd(ctx, logger),
		getVersionCmd(),
	)

	if err := c.cmd.Execute(); err != nil {
		exitCode := exitcodes.GenericError
		var ecerr errext.HasExitCode
		if errors.As(err, &ecerr) {
			exitCode = ecerr.ExitCode()
		}
		errText, fields := errext.Format(err)
		logger.WithFields(fields).Error(errText)
		cancel()
		os.Exit(int(exitCode)) //nolint:gocritic
	}
}
