// Command planline-tui runs the terminal client for the scheduling assistant.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/planline/planline/internal/tui"
)

func main() {
	var (
		serverURL    string
		pollInterval int
	)
	flag.StringVar(&serverURL, "server", "http://127.0.0.1:3001", "base URL of the planline server")
	flag.IntVar(&pollInterval, "poll", 5, "timeline poll interval in seconds")
	flag.Parse()

	if err := tui.Run(serverURL, time.Duration(pollInterval)*time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "planline-tui: %v\n", err)
		os.Exit(1)
	}
}
