package main

import (
	"os"

	"github.com/internmatch/matcher/cmd/matchctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
