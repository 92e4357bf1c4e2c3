package main

import (
	"fmt"
	"os"
)

func main() {
	c := newCLI()
	err := c.root.Execute()
	c.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
