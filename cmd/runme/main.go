package main

import (
	"os"

	"github.com/goplus/runme/cmd/runme/internal"
)

func main() {
	os.Exit(internal.Execute())
}
