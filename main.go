package main

import (
	"os"

	"github.com/corpauth/corpauth/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
