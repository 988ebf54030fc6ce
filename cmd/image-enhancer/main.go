package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ironsheep/image-enhancer/internal/config"
	"github.com/ironsheep/image-enhancer/internal/enhance"
	"github.com/ironsheep/image-enhancer/internal/httpapi"
	"github.com/ironsheep/image-enhancer/internal/imaging"
	"github.com/ironsheep/image-enhancer/internal/logging"
	"github.com/ironsheep/image-enhancer/internal/server"
	"github.com/ironsheep/image-enhancer/internal/service"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "--version", "-v", "version":
		fmt.Printf("image-enhancer %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		printUsage(os.Stdout)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	// Logs always go to stderr; stdout is for MCP traffic and CLI output.
	log := logging.NewStderr(logging.ParseLevel(cfg.LogLevel))
	log.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("image-enhancer starting")

	switch cmd {
	case "serve":
		err = runServe(cfg, log)
	case "mcp":
		srv := server.New(logging.Component(log, "mcp"), Version, cfg.Timeout)
		err = srv.Run()
	case "enhance":
		err = runEnhance(cfg, log, args, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage(os.Stderr)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("command failed")
	}
}

func runServe(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := httpapi.New(cfg, logging.Component(log, "http"), Version)
	return api.ListenAndServe(ctx)
}

// runEnhance implements the one-shot CLI: read a file, enhance it, write the
// result and print the metrics as JSON.
func runEnhance(cfg *config.Config, log zerolog.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("enhance", flag.ContinueOnError)
	var p enhance.Params
	fs.Float64Var(&p.ClipLimit, "clip", enhance.DefaultClipLimit, "CLAHE clip limit")
	fs.IntVar(&p.TileSize, "tiles", enhance.DefaultTileSize, "CLAHE grid size")
	fs.Float64Var(&p.Amount, "amount", enhance.DefaultAmount, "unsharp mask strength")
	fs.Float64Var(&p.Sigma, "sigma", enhance.DefaultSigma, "unsharp mask sigma")
	fs.IntVar(&p.Diameter, "diameter", enhance.DefaultDiameter, "bilateral diameter")
	fs.Float64Var(&p.SigmaColor, "sigma-color", enhance.DefaultSigmaColor, "bilateral range sigma")
	fs.Float64Var(&p.SigmaSpace, "sigma-space", enhance.DefaultSigmaSpace, "bilateral spatial sigma")
	fs.IntVar(&p.MorphRadius, "radius", enhance.DefaultMorphRadius, "top-hat disk radius")
	fs.Float64Var(&p.Gamma, "gamma", enhance.DefaultGamma, "gamma exponent")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) < 2 || len(rest) > 3 {
		return errors.New("usage: image-enhancer enhance [flags] <input> <output> [algorithm]")
	}
	input, output := rest[0], rest[1]
	algorithm := enhance.CLAHE.String()
	if len(rest) == 3 {
		algorithm = rest[2]
	}

	cache := imaging.NewImageCache()
	gray, err := cache.LoadGray(input)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	res, err := service.Run(ctx, service.Request{
		Image:     gray,
		Algorithm: algorithm,
		Params:    p,
	})
	if err != nil {
		return err
	}
	if res.Defaulted {
		log.Warn().Str("requested", algorithm).Msg("unknown algorithm, using clahe")
	}
	if err := res.Metrics.Err(); err != nil {
		log.Warn().Err(err).Msg("degenerate metrics")
	}

	if err := imaging.Save(res.Enhanced, output); err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"input":      input,
		"output":     output,
		"algorithm":  res.Algorithm,
		"metrics":    res.Metrics,
		"elapsed_ms": res.Elapsed.Milliseconds(),
	})
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "image-enhancer - grayscale contrast enhancement with quality metrics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  image-enhancer [serve]                            Run the HTTP API (default)")
	fmt.Fprintln(w, "  image-enhancer mcp                                Run the MCP server on stdin/stdout")
	fmt.Fprintln(w, "  image-enhancer enhance [flags] <in> <out> [alg]   Enhance one file and print metrics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Algorithms:")
	for _, info := range enhance.Algorithms() {
		fmt.Fprintf(w, "  %-20s %s\n", info.Name, info.Description)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=debug        Log level (debug, info, warn, error)\n", config.EnvLogLevel)
	fmt.Fprintf(w, "  %s=host:port        HTTP listen address (default %s, or :$PORT)\n", config.EnvAddr, config.DefaultAddr)
	fmt.Fprintf(w, "  %s=25         Request body limit in MiB\n", config.EnvMaxBodyMB)
	fmt.Fprintf(w, "  %s=*      Comma-separated CORS origins\n", config.EnvAllowedOrigins)
	fmt.Fprintf(w, "  %s=60s           Per-request processing timeout\n", config.EnvTimeout)
}
