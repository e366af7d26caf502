package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"seiyo-exam/internal/userclient"
)

func main() {
	user := flag.String("user", "", "user id recorded with attempts (required)")
	server := flag.String("server", "http://127.0.0.1:8080", "exam service base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP timeout")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "error: --user is required")
		os.Exit(1)
	}

	err := userclient.Run(context.Background(), os.Stdin, os.Stdout, userclient.Config{
		UserID:      *user,
		ServerURL:   *server,
		HTTPTimeout: *timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
