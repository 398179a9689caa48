package main

import (
	"os"

	"bulletin/service"
)

// exit is swapped out by tests.
var exit = os.Exit

func main() {
	RealMain()
}

// RealMain runs the command line and exits with its status.
func RealMain() {
	exit(service.Execute(os.Args[1:]))
}
