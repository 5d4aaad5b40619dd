package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"filegate/internal/app"
	"filegate/internal/config"
	"filegate/internal/csvexport"
	"filegate/internal/domain"
	"filegate/internal/formatter"
	"filegate/internal/logging"
	"filegate/internal/service"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		concurrency = flag.Int("concurrency", 0, "parallel downloads per chunk (default from config)")
		title       = flag.Bool("title", true, "prefix each block with [Category] file name")
		withURL     = flag.Bool("url", false, "include the source URL under each title")
		separator   = flag.String("separator", "---", "line placed between blocks")
		onError     = flag.String("on-error", string(domain.OnErrorSkip), "failed records: skip, include or error")
		asCSV       = flag.Bool("csv", false, "print a CSV summary instead of the joined text")
		quiet       = flag.Bool("quiet", false, "suppress progress output on stderr")
	)
	flag.Usage = func() {
		printError("usage: parse [flags] URL...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	urls := flag.Args()
	if len(urls) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	policy := domain.ErrorPolicy(*onError)
	if !policy.Valid() {
		printError("Error: --on-error must be skip, include or error\n")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		printError("Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, nil)

	parser, err := app.Build(cfg, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := service.DefaultBatchOptions(cfg.Batch)
	opts.PreserveOrder = true
	if *concurrency > 0 {
		opts.Concurrency = *concurrency
	}
	if !*quiet {
		opts.OnProgress = func(p domain.BatchProgress) {
			if p.Record == nil {
				return
			}
			status := "ok"
			if !p.Record.Success {
				status = "failed: " + p.Record.Error
			}
			printError("[%d/%d] %s %s\n", p.Completed, p.Total, p.Record.FileName, status)
		}
	}

	records, err := parser.ParseMany(ctx, urls, opts)
	if err != nil {
		printError("Error: batch aborted: %v\n", err)
		os.Exit(1)
	}

	if *asCSV {
		if err := writeCSV(os.Stdout, records); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	text, err := formatter.Format(records, formatter.Options{
		IncludeTitle: *title,
		IncludeURL:   *withURL,
		Separator:    *separator,
		OnError:      policy,
	})
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(text)
}

func writeCSV(out io.Writer, records []*domain.ParsedRecord) error {
	w := csvexport.NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteRecords(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
