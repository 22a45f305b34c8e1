package main

import (
	"os"

	"digispark-uploader/cmd"
	"digispark-uploader/internal/logger"
)

// main delegates to cmd.Execute, which parses flags and runs the selected command.
//
// digispark-uploader gets a sketch onto a Digispark in one go:
//   - makes sure arduino-cli is installed with the digistump:avr core, installing
//     it next to the working directory when the remembered copy is missing or broken
//   - downloads the example sketch bundle fresh on every run
//   - lists the sketches and asks which one to use
//   - compiles it and, once the board is plugged in, uploads it
//
// Every failure is fatal: the error is printed and the process exits with status 1.
func main() {
	if err := cmd.Execute(); err != nil {
		logger.Error("[ERROR] %v\n", err)
		os.Exit(1)
	}
}
