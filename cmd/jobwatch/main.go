package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"studio/internal/watch"
)

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("api", envOr("STUDIO_API_URL", "http://localhost:8080"), "studio API base URL")
	token := flag.String("token", os.Getenv("STUDIO_TOKEN"), "bearer access token")
	poll := flag.Duration("poll", 500*time.Millisecond, "poll interval")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: jobwatch [flags] <job-id>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	client, err := watch.NewClient(*apiURL, *token, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := watch.Run(watch.Options{
		Context:  ctx,
		Source:   client,
		JobID:    flag.Arg(0),
		PollTick: *poll,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "jobwatch:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
