// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"claw"
	"claw/internal/config"
	"claw/internal/engine"
	"claw/internal/errors"
	"claw/internal/transform"
	"claw/internal/xir"
)

type options struct {
	configPath string
	userConfig string
	output     string
	target     string
	directive  string
	verbose    bool
	showConfig bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "clawfc <input>",
		Short:         "Directive-driven source-to-source translator",
		Long:          "clawfc applies the configured directive-driven transformation pipeline\nto an IR document and emits the transformed document.",
		Version:       claw.Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config-path", "", "directory holding configuration documents (default: built-in)")
	cmd.Flags().StringVar(&opts.userConfig, "config", "", "alternative configuration file (root or extension)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.target, "target", "", "override the default target")
	cmd.Flags().StringVar(&opts.directive, "directive", "", "override the default accelerator directive language")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().BoolVar(&opts.showConfig, "show-config", false, "display the loaded configuration")

	return cmd
}

func run(opts *options, input string) error {
	verbosity := 0
	if opts.verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	startTime := time.Now()
	registry := transform.Registry()

	cfg, err := config.Load(config.Options{
		Path:     opts.configPath,
		UserFile: opts.userConfig,
		Classes:  registry.ClassInfo,
	})
	if err != nil {
		color.Red("configuration error: %v", err)
		return err
	}
	cfg.SetUserTarget(opts.target)
	cfg.SetUserDirective(opts.directive)
	if opts.showConfig {
		fmt.Print(config.Describe(cfg))
	}

	prog, err := xir.Load(input)
	if err != nil {
		color.Red("cannot load %s: %v", input, err)
		return err
	}

	translator := engine.NewTranslator(cfg, registry)
	translateErr := translator.Translate(prog)

	reporter := errors.NewReporter(os.Stderr, input)
	for _, w := range prog.Warnings() {
		reporter.Report(errors.LevelWarning, w.Text, w.Lines)
	}
	for _, e := range prog.Errors() {
		reporter.Report(errors.LevelError, e.Text, e.Lines)
	}

	duration := formatDuration(time.Since(startTime))
	if translateErr != nil {
		// The partially transformed document is discarded, never emitted.
		color.Red("translation failed after %s", duration)
		return translateErr
	}

	if opts.output != "" {
		if err := prog.Save(opts.output); err != nil {
			color.Red("cannot write %s: %v", opts.output, err)
			return err
		}
	} else {
		if err := prog.WriteTo(os.Stdout); err != nil {
			return err
		}
	}

	color.Green("Successfully translated %s in %s", input, duration)
	return nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
