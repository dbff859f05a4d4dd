package main

import (
	"os"

	"sparkdo/cmd/sparkdo/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args[1:], os.Stdout, os.Stderr, nil))
}
