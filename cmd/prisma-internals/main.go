package main

import (
	"github.com/TechXTT/internals/pkg/cli"
)

func main() {
	cli.Execute()
}
