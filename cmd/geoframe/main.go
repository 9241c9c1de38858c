package main

import (
	"os"

	"github.com/atlasdatatech/geoframe/cmd/geoframe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
