package main

import (
	"cratedeps/internal/ui/cli"
	"os"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
