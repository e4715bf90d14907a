package main

import (
	"fmt"
	"os"

	"github.com/NordCoder/Classbell/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "classbellctl:", err)
		os.Exit(1)
	}
}
