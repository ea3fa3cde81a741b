package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/meshcap/meshcap/internal/capfile"
	"github.com/meshcap/meshcap/internal/capture"
	"github.com/meshcap/meshcap/internal/format"
	"github.com/meshcap/meshcap/internal/mesh"
	"github.com/meshcap/meshcap/internal/pkg/filter"
	"github.com/meshcap/meshcap/internal/pkg/security"
)

type captureOptions struct {
	port      string
	readFile  string
	writeFile string
	compress  bool
	encrypt   bool
	keyFile   string
	count     int
	noResolve bool
	labelMode string
	verbose   bool
	flags     *pflag.FlagSet
}

func newCaptureCommand() *cobra.Command {
	opts := &captureOptions{}

	cmd := &cobra.Command{
		Use:           "meshcap [OPTIONS] [FILTER...]",
		Short:         "Capture, filter and display mesh network packets",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.flags = cmd.Flags()
			return runCapture(opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.port, "port", "p", "/dev/ttyACM0", "Serial device path of the node gateway")
	flags.StringVarP(&opts.readFile, "read-file", "r", "", "Read packets from a capture file ('-' for NDJSON on stdin)")
	flags.StringVarP(&opts.writeFile, "write-file", "w", "", "Write matching packets to a capture file")
	flags.BoolVar(&opts.compress, "compress", false, "Compress the capture file with zstd")
	flags.BoolVar(&opts.encrypt, "encrypt", false, "Encrypt capture records (MESHCAP_PASSPHRASE or --key-file)")
	flags.StringVar(&opts.keyFile, "key-file", "meshcap.key", "Master key file used with --encrypt")
	flags.IntVarP(&opts.count, "count", "c", 0, "Exit after this many matching packets")
	flags.BoolVarP(&opts.noResolve, "no-resolve", "n", false, "Disable node name resolution (use raw IDs)")
	flags.StringVar(&opts.labelMode, "label-mode", "named-with-hex", "Node label mode: auto, named-with-hex, named-only or hex-only")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Show full payload details for unformatted ports")

	return cmd
}

func runCapture(opts *captureOptions, filterArgs []string) error {
	book := mesh.NewNodeBook()
	var resolver filter.Resolver = book
	if opts.noResolve {
		resolver = filter.Unresolved{}
	}

	match, err := filter.Compile(filterArgs, resolver)
	if err != nil {
		return fmt.Errorf("invalid filter expression: %w", err)
	}
	if len(filterArgs) > 0 {
		log.Printf("Using filter: %s", strings.Join(filterArgs, " "))
	}

	mode, err := format.ParseLabelMode(opts.labelMode)
	if err != nil {
		return err
	}

	var fileOpts capfile.Options
	fileOpts.Compress = opts.compress
	if opts.encrypt {
		if pass := os.Getenv("MESHCAP_PASSPHRASE"); pass != "" {
			fileOpts.Passphrase = pass
		} else {
			key, generated, err := security.LoadKey(opts.keyFile)
			if err != nil {
				return err
			}
			if generated {
				log.Printf("Generated new master key at %s", opts.keyFile)
			}
			fileOpts.Key = key
		}
	}

	var writer *capfile.Writer
	if opts.writeFile != "" {
		writer, err = capfile.Create(opts.writeFile, fileOpts)
		if err != nil {
			return fmt.Errorf("could not open write file %q: %w", opts.writeFile, err)
		}
		defer writer.Close()
		log.Printf("Writing packets to %s", opts.writeFile)
	}

	var src capture.Source
	switch {
	case opts.readFile != "" && opts.flags.Changed("port"):
		return fmt.Errorf("--port and --read-file are mutually exclusive")
	case opts.readFile == "-":
		src = capture.NewNDJSONSource(os.Stdin)
		log.Printf("Reading packets from stdin...")
	case opts.readFile != "":
		src, err = capfile.Open(opts.readFile, fileOpts)
		if err != nil {
			return fmt.Errorf("could not read capture file %q: %w", opts.readFile, err)
		}
		log.Printf("Reading packets from %s...", opts.readFile)
	default:
		// Live packets arrive as newline-delimited JSON on stdin; the
		// serial transport is owned by the device gateway process.
		src = capture.NewNDJSONSource(os.Stdin)
		log.Printf("Listening for packets from %s... Press Ctrl+C to exit", opts.port)
	}
	defer src.Close()

	session := &capture.Session{
		Match:  match,
		Writer: writer,
		Book:   book,
		Formatter: &format.Formatter{
			Book:      book,
			Mode:      mode,
			NoResolve: opts.noResolve,
			Verbose:   opts.verbose,
		},
		Out:   os.Stdout,
		Count: opts.count,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	matched, err := session.Run(ctx, src)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Printf("Processed %d matching packets.", matched)

	if writer != nil {
		return writer.Sync()
	}
	return nil
}

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	if err := newCaptureCommand().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
