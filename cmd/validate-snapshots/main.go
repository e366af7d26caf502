package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"seiyo-exam/internal/publish"
	"seiyo-exam/internal/snapshot"
)

func main() {
	dir := flag.String("dir", publish.DefaultOutDir, "snapshot directory to scan")
	flag.Parse()

	checked, failures, err := snapshot.CheckTree(context.Background(), *dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	for _, failure := range failures {
		fmt.Fprintln(os.Stderr, failure.Error())
	}
	if len(failures) > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d JSON files are invalid\n", len(failures), checked)
		os.Exit(1)
	}
	fmt.Printf("OK: %d JSON files parsed\n", checked)
}
