package main

import (
	"os"

	"github.com/auraCodesKM/resourcehub-sdk-go/cmd/hubctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
