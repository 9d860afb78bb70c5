package main

import (
	"os"

	"alumni-quiz-proctor/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
