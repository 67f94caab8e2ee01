// Command gscchat answers period over period search performance questions from the terminal
// and bulk loads daily fact rows into the metrics table
package main

import "os"

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}
