package main

import (
	"fmt"
	"os"

	"github.com/stxkxs/runtrace/internal/cli"
	rtErrors "github.com/stxkxs/runtrace/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if s := rtErrors.Suggestion(err); s != "" {
			fmt.Fprintln(os.Stderr, "  →", s)
		}
		os.Exit(1)
	}
}
