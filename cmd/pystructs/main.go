// pystructs encodes and decodes binary messages described by a YAML schema.
//
// Usage:
//
//	pystructs encode   --schema dns.yaml [--input yaml|json|cbor] [--hex] [--frame] [-o out.bin] [value-file]
//	pystructs decode   --schema dns.yaml [--format yaml|json|cbor] [--hex] [--frame] [--strict] file...
//	pystructs describe --schema dns.yaml [--struct Name]
package main

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/imgurbot12/pystructs"
	"github.com/imgurbot12/pystructs/pkg/schema"
)

type options struct {
	schema     string
	name       string
	verbose    bool
	cpuProfile string

	// encode
	input  string
	output string
	// decode
	format string
	strict bool
	// encode and decode
	hex   bool
	frame bool
}

type command func(o *options, s *schema.Schema, args []string, stdin io.Reader, stdout io.Writer) error

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return errors.New("no command given")
	}
	name, rest := args[0], args[1:]

	var o options
	flagSet := pflag.NewFlagSet("pystructs "+name, pflag.ContinueOnError)
	flagSet.StringVarP(&o.schema, "schema", "s", "", "YAML schema file (required)")
	flagSet.StringVar(&o.name, "struct", "", "struct to use (default: the schema root)")
	flagSet.BoolVarP(&o.verbose, "verbose", "v", false, "log every field at debug level")
	flagSet.StringVar(&o.cpuProfile, "cpuprofile", "", "write a CPU profile to this file")

	var cmd command
	switch name {
	case "encode":
		flagSet.StringVarP(&o.input, "input", "i", "yaml", "value format: yaml, json or cbor")
		flagSet.StringVarP(&o.output, "output", "o", "", "write to this file instead of stdout")
		flagSet.BoolVar(&o.hex, "hex", false, "write hex text instead of raw bytes")
		flagSet.BoolVar(&o.frame, "frame", false, "wrap the message in a compactwire data frame")
		cmd = encode
	case "decode":
		flagSet.StringVarP(&o.format, "format", "f", "yaml", "output format: yaml, json or cbor")
		flagSet.BoolVar(&o.hex, "hex", false, "inputs are hex text")
		flagSet.BoolVar(&o.frame, "frame", false, "inputs are compactwire data frames")
		flagSet.BoolVar(&o.strict, "strict", false, "reject trailing bytes after the message")
		cmd = decode
	case "describe":
		cmd = describe
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(os.Stderr)
		return errors.Errorf("unknown command %q", name)
	}
	if err := flagSet.Parse(rest); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if o.schema == "" {
		return errors.New("--schema is required")
	}

	logger, err := newLogger(o.verbose)
	if err != nil {
		return errors.Wrap(err, "logger")
	}
	defer logger.Sync()
	pystructs.SetLogger(logger)

	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			return errors.Wrap(err, "cpu profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return errors.Wrap(err, "cpu profile")
		}
		defer pprof.StopCPUProfile()
	}

	s, err := schema.Load(o.schema)
	if err != nil {
		return err
	}
	return cmd(&o, s, flagSet.Args(), stdin, stdout)
}

// newLogger logs to stderr so stdout stays clean for message bytes.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `pystructs encodes and decodes binary messages described by a YAML schema.

Usage:
  pystructs encode   --schema FILE [--struct NAME] [--input yaml|json|cbor] [--hex] [--frame] [-o FILE] [VALUE-FILE]
  pystructs decode   --schema FILE [--struct NAME] [--format yaml|json|cbor] [--hex] [--frame] [--strict] FILE...
  pystructs describe --schema FILE [--struct NAME]

encode reads one value (default stdin) and writes the message bytes.
decode reads each FILE (default stdin) and prints one document per file.
Byte strings that are not printable text are shown as hex.
`)
}
