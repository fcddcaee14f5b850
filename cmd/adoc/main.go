// Command adoc converts AsciiDoc files to HTML.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/dgallion1/adocgest/internal/config"
	"github.com/dgallion1/adocgest/internal/convert"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 on success, 1 when a document failed
// and 2 on usage errors.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		outPath   string
		attrFlags []string
		attrFile  string
		legacy    bool
		verbose   bool
	)
	flags := pflag.NewFlagSet("adoc", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&outPath, "output", "o", "", "Output file, or directory for several inputs (\"-\" for stdout)")
	flags.StringArrayVarP(&attrFlags, "attribute", "a", nil, "Set a document attribute (name=value, name, or name! to unset)")
	flags.StringVar(&attrFile, "attributes-file", "", "YAML file of document attributes")
	flags.BoolVar(&legacy, "legacy", false, "Accept underlined (two-line) section titles")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log conversion details")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: adoc [flags] FILE...\n")
		fmt.Fprintln(stderr, "\nWith no FILE, or when FILE is -, the document is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	level := charmlog.WarnLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           level,
		Prefix:          "adoc",
	})
	log := slog.New(handler)

	attrs := map[string]string{}
	if attrFile != "" {
		fileAttrs, err := config.ReadAttributesFile(attrFile)
		if err != nil {
			log.Error("attributes file", "error", err)
			return 2
		}
		attrs = fileAttrs
	}
	for _, a := range attrFlags {
		name, value, _ := strings.Cut(a, "=")
		if name == "" {
			log.Error("invalid attribute", "attribute", a)
			return 2
		}
		attrs[name] = value
	}

	inputs := flags.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	if len(inputs) > 1 && outPath != "" && outPath != "-" {
		if err := os.MkdirAll(outPath, 0o755); err != nil {
			log.Error("create output directory", "error", err)
			return 1
		}
	}

	conv := convert.New(log)
	opts := convert.Options{Attributes: attrs, Legacy: legacy}
	code := 0
	for _, in := range inputs {
		if err := convertOne(ctx, conv, opts, in, outputFor(in, outPath, len(inputs)), stdin, stdout); err != nil {
			log.Error("conversion failed", "input", in, "error", err)
			code = 1
			continue
		}
		log.Debug("converted", "input", in)
	}
	return code
}

// outputFor picks the destination for input: "-" means stdout.
func outputFor(input, outPath string, count int) string {
	switch {
	case outPath == "-":
		return "-"
	case outPath != "" && count > 1:
		return filepath.Join(outPath, htmlName(input))
	case outPath != "":
		return outPath
	case input == "-":
		return "-"
	default:
		return strings.TrimSuffix(input, filepath.Ext(input)) + ".html"
	}
}

func htmlName(input string) string {
	if input == "-" {
		return "stdin.html"
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
}

func convertOne(ctx context.Context, conv *convert.Converter, opts convert.Options, in, out string, stdin io.Reader, stdout io.Writer) error {
	var r io.Reader = stdin
	if in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	doc, err := conv.ConvertReader(ctx, r, opts)
	if err != nil {
		return err
	}

	if out == "-" {
		_, err = io.WriteString(stdout, doc.HTML()+"\n")
		return err
	}
	if err := os.WriteFile(out, []byte(doc.HTML()+"\n"), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
