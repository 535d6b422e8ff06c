package main

import (
	"os"

	"github.com/sameezy667/ResQ-sub000/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
