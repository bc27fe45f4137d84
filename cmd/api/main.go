package main

import (
	"os"

	"BlackByte_Forum/cmd/api/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
