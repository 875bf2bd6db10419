package main

import (
	"github.com/c9s/ordmap/pkg/cmd"
)

func main() {
	cmd.Execute()
}
