package main

import (
	"github.com/lance13c/todrec/cmd"
)

var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
