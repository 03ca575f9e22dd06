// Command mortarc compiles a Mortar dialogue source file into the
// `.mortared` JSON artifact consumed at runtime.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Bli-AIk/mortar/analyzer"
	"github.com/Bli-AIk/mortar/diagnostic"
	"github.com/Bli-AIk/mortar/i18n"
	"github.com/Bli-AIk/mortar/lexer"
	"github.com/Bli-AIk/mortar/parser"
	"github.com/Bli-AIk/mortar/serializer"
)

// log is the CLI's diagnostic channel for its own operational messages
// (distinct from the compiled document's Diagnostic values): Warn and
// above only, text-formatted for a terminal. --verbose-lexer also lowers
// the level to Debug so the CLI's own debug line appears alongside the
// token dump it already prints.
var log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

func main() {
	var lang string

	rootCmd := &cobra.Command{
		Use:           "mortarc <file>",
		Short:         "Compile a Mortar dialogue source file to .mortared",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			return runCompile(args[0], cfg)
		},
	}

	f := rootCmd.Flags()
	f.StringP("output", "o", "", "write the .mortared document to this path instead of stdout")
	f.BoolP("pretty", "p", false, "pretty-print the emitted JSON")
	f.BoolP("check", "c", false, "only report diagnostics, do not emit a document")
	f.BoolP("verbose-lexer", "v", false, "dump every token the lexer produces before parsing")
	f.BoolP("show-source", "s", false, "include a source snippet with each diagnostic")
	f.StringVar(&lang, "lang", "", "diagnostic message locale (en|zh); defaults to the environment")
	f.Bool("no-color", false, "disable ANSI color in diagnostic output")

	bindFlag := func(viperKey, flagName string) {
		_ = viper.BindPFlag(viperKey, f.Lookup(flagName))
	}
	bindFlag("output", "output")
	bindFlag("pretty", "pretty")
	bindFlag("check", "check")
	bindFlag("verbose-lexer", "verbose-lexer")
	bindFlag("show-source", "show-source")
	bindFlag("lang", "lang")
	bindFlag("no-color", "no-color")

	viper.SetEnvPrefix("MORTARC")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.SetConfigName(".mortarc")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // absent config file is not an error

	if err := rootCmd.Execute(); err != nil {
		FormatError(os.Stderr, err, ShouldUseColor(viper.GetBool("no-color")))
		os.Exit(1)
	}
}

func runCompile(path string, cfg Config) error {
	useColor := ShouldUseColor(cfg.NoColor)

	source, err := os.ReadFile(path)
	if err != nil {
		log.Warn("cannot read source file", "path", path, "error", err)
		return &CLIError{
			Type:    "io",
			Message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}

	locale := i18n.FromEnv()
	if cfg.Lang != "" {
		locale = i18n.FromString(cfg.Lang)
	}

	if cfg.VerboseLexer {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		for _, tok := range lexer.Tokenize(source) {
			fmt.Fprintln(os.Stderr, tok.String())
		}
		log.Debug("tokenized source", "path", path)
	}

	prog, parseDiags := parser.Parse(source, parser.WithLocale(locale))
	_, analyzeDiags := analyzer.Analyze(prog, locale)

	diags := make([]diagnostic.Diagnostic, 0, len(parseDiags)+len(analyzeDiags))
	diags = append(diags, parseDiags...)
	diags = append(diags, analyzeDiags...)

	if len(diags) > 0 {
		FormatDiagnostics(os.Stderr, diags, source, path, cfg.ShowSource, useColor)
	}
	if diagnostic.HasErrors(diags) {
		log.Warn("compilation failed", "path", path, "errors", countErrors(diags))
		return &CLIError{
			Type:    "compile",
			Message: fmt.Sprintf("%s: compilation failed with %d error(s)", path, countErrors(diags)),
		}
	}
	if cfg.Check {
		return nil
	}

	doc, err := serializer.Serialize(prog, serializer.Options{Pretty: cfg.Pretty})
	if err != nil {
		log.Warn("serialization failed", "path", path, "error", err)
		return &CLIError{
			Type:    "compile",
			Message: fmt.Sprintf("%s: %v", path, err),
		}
	}
	data, err := serializer.Marshal(doc, serializer.Options{Pretty: cfg.Pretty})
	if err != nil {
		return errors.Wrap(err, "marshal mortared document")
	}

	if cfg.Output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(cfg.Output, data, 0o644); err != nil {
		log.Warn("cannot write output file", "path", cfg.Output, "error", err)
		return &CLIError{
			Type:    "io",
			Message: fmt.Sprintf("cannot write %s: %v", cfg.Output, err),
		}
	}
	return nil
}

func countErrors(ds []diagnostic.Diagnostic) int {
	n := 0
	for _, d := range ds {
		if d.Severity == diagnostic.Error {
			n++
		}
	}
	return n
}
