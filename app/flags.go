package app

import (
	"flag"
	"fmt"
	"io"

	"github.com/freekieb7/werver/config"
)

type Options struct {
	Debug bool
}

// ParseFlags applies command line overrides on top of cfg and validates
// the result. Flags left at their zero value keep the configured value.
// Asking for help returns flag.ErrHelp after the usage is written to out.
func ParseFlags(args []string, cfg *config.Config, out io.Writer) (Options, error) {
	var opts Options

	fs := flag.NewFlagSet("werver", flag.ContinueOnError)
	fs.SetOutput(out)

	host := fs.String("host", "", "host to listen on (default 127.0.0.1)")
	port := fs.Int("port", 0, "port to listen on (default 7878)")
	workers := fs.Int("workers", 0, "number of worker goroutines (default 4)")
	queueSize := fs.Int("queue", 0, "job queue size before connections are rejected")
	pagesDir := fs.String("pages", "", "directory holding the page templates (default pages)")
	fs.BoolVar(&opts.Debug, "debug", false, "log debug output to the console")

	fs.Usage = func() {
		fmt.Fprintln(out, "werver")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Usage:")
		fmt.Fprintln(out, "  werver [options]")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *workers != 0 {
		cfg.Server.Workers = *workers
	}
	if *queueSize != 0 {
		cfg.Server.QueueSize = *queueSize
	}
	if *pagesDir != "" {
		cfg.Pages.Dir = *pagesDir
	}

	if err := cfg.Validate(); err != nil {
		return opts, fmt.Errorf("invalid options: %w", err)
	}

	return opts, nil
}
