package main

import (
	"os"

	"github.com/dataignite-io/nnstreamer/cmd/nnsplug"
)

func main() {
	rootCmd := nnsplug.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
