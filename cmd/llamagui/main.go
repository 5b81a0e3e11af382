package main

import (
	"os"

	"github.com/coremaven/llama.cpp-GUI/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
