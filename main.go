package main

import (
	"os"

	"github.com/witnessdag/witnessd/app"
)

func main() {
	if err := app.StartApp(); err != nil {
		os.Exit(1)
	}
}
