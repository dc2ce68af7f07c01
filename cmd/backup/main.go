package main

import (
	"os"

	"babymind/internal/cli"
)

func main() {
	if err := cli.BackupCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
