package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"seiyo-exam/internal/cli"
	"seiyo-exam/internal/publish"
)

func main() {
	dir := flag.String("dir", publish.DefaultOutDir, "published snapshot directory")
	course := flag.String("course", "", "course id (default KTS2 when --subject is set)")
	subject := flag.String("subject", "", "subject id; prompts when empty")
	limit := flag.Int("limit", 0, "maximum number of questions (0 = all)")
	flag.Parse()

	err := cli.Run(context.Background(), os.Stdin, os.Stdout, cli.Config{
		SnapshotDir: *dir,
		CourseID:    *course,
		SubjectID:   *subject,
		Limit:       *limit,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
