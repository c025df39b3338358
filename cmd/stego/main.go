// stego hides and recovers payloads in image files from the command line.
// It uses the same configuration as stego-tools-mcp for its defaults.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ironsheep/stego-tools-mcp/internal/config"
	"github.com/ironsheep/stego-tools-mcp/internal/imaging"
	"github.com/ironsheep/stego-tools-mcp/internal/stego"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type command struct {
	name    string
	summary string
	run     func(cfg *config.Config, args []string, out io.Writer) error
}

var commands = []command{
	{"encode", "hide a message or file in a cover image", runEncode},
	{"decode", "recover a hidden payload", runDecode},
	{"capacity", "show how many bytes a cover can hide", runCapacity},
	{"info", "show image metadata and capacity at every bit depth", runInfo},
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(out)
		return nil
	}

	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		cfg, err := config.Load("")
		if err != nil {
			return err
		}
		return c.run(cfg, args[1:], out)
	}
	return fmt.Errorf("unknown command %q (run 'stego help')", args[0])
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: stego <command> [options] <image>")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Defaults come from $%s and the STEGO_MCP_* environment variables.\n", config.EnvConfig)
}

// parse parses a subcommand's flags and returns its single positional
// argument.
func parse(flags *pflag.FlagSet, args []string) (string, error) {
	if err := flags.Parse(args); err != nil {
		return "", err
	}
	if flags.NArg() != 1 {
		return "", fmt.Errorf("%s: expected one image path, got %d arguments", flags.Name(), flags.NArg())
	}
	return flags.Arg(0), nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runEncode(cfg *config.Config, args []string, out io.Writer) error {
	var req stego.EncodeRequest
	var message, file string

	flags := pflag.NewFlagSet("encode", pflag.ContinueOnError)
	flags.StringVarP(&message, "message", "m", "", "text to hide")
	flags.StringVarP(&file, "file", "f", "", "file whose bytes to hide (- for stdin)")
	flags.IntVarP(&req.BitsPerChannel, "bits", "k", cfg.BitsPerChannel, "bits per channel (1-4)")
	flags.Float64VarP(&req.Scale, "scale", "s", cfg.Scale, "enlarge the cover by this factor first")
	flags.StringVar(&req.Filter, "filter", cfg.Filter, "resampling filter ("+strings.Join(imaging.Filters(), ", ")+")")
	flags.BoolVarP(&req.Compress, "compress", "z", false, "zstd-compress the payload")
	flags.StringVarP(&req.OutputPath, "output", "o", "", "output image (default <cover>.stego.<format>)")
	flags.StringVar(&req.OutputFormat, "format", "", "output format: png, bmp or tiff")

	cover, err := parse(flags, args)
	if err != nil {
		return err
	}
	req.CoverPath = cover
	req.OutputDir = cfg.OutputDir
	if req.OutputFormat == "" && req.OutputPath == "" {
		req.OutputFormat = cfg.OutputFormat
	}

	switch {
	case message != "" && file != "":
		return errors.New("encode: use either --message or --file")
	case file == "-":
		req.Payload, err = io.ReadAll(os.Stdin)
	case file != "":
		req.Payload, err = os.ReadFile(file)
	default:
		req.Message = message
	}
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}

	result, err := stego.Encode(imaging.NewImageCache(), req)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return writeJSON(out, result)
}

func runDecode(cfg *config.Config, args []string, out io.Writer) error {
	var req stego.DecodeRequest
	var output string
	var asJSON bool

	flags := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	flags.IntVarP(&req.BitsPerChannel, "bits", "k", cfg.BitsPerChannel, "bits per channel used to encode")
	flags.BoolVarP(&req.Compressed, "compressed", "z", false, "the payload was zstd-compressed")
	flags.StringVarP(&output, "output", "o", "", "write the raw payload to this file")
	flags.BoolVar(&asJSON, "json", false, "print the full result as JSON")

	path, err := parse(flags, args)
	if err != nil {
		return err
	}
	req.Path = path

	result, err := stego.Decode(imaging.NewImageCache(), req)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	switch {
	case output != "":
		data, err := stego.PayloadFromBase64(result.PayloadBase64)
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("writing payload: %w", err)
		}
		fmt.Fprintf(out, "wrote %d bytes to %s\n", result.PayloadLength, output)
		return nil
	case asJSON:
		return writeJSON(out, result)
	default:
		_, err := fmt.Fprintln(out, result.Message)
		return err
	}
}

func runCapacity(cfg *config.Config, args []string, out io.Writer) error {
	var k int
	var scale float64

	flags := pflag.NewFlagSet("capacity", pflag.ContinueOnError)
	flags.IntVarP(&k, "bits", "k", cfg.BitsPerChannel, "bits per channel (1-4)")
	flags.Float64VarP(&scale, "scale", "s", cfg.Scale, "scale applied before embedding")

	path, err := parse(flags, args)
	if err != nil {
		return err
	}
	result, err := stego.CapacityForImage(imaging.NewImageCache(), path, k, scale)
	if err != nil {
		return err
	}
	return writeJSON(out, result)
}

func runInfo(_ *config.Config, args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("info", pflag.ContinueOnError)
	path, err := parse(flags, args)
	if err != nil {
		return err
	}
	info, err := imaging.LoadImageInfo(imaging.NewImageCache(), path)
	if err != nil {
		return err
	}
	return writeJSON(out, info)
}
