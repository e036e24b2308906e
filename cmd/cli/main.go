// Command sub-engine runs the submarine motion engine from the terminal.
//
//	sub-engine replay [file]   replay a SimulationInput JSON (file or stdin) to stdout
//	sub-engine relay           serve the WebSocket signaling relay
//	sub-engine helm            drive a vessel from the keyboard
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
