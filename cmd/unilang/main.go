package main

import (
	"os"

	"github.com/msto63/unilang/cmd/unilang/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
