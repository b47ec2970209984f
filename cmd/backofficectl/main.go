package main

import (
	"os"
)

func main() {
	if err := NewRootCmd(defaultDeps()).Execute(); err != nil {
		os.Exit(1)
	}
}
