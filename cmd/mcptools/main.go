package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/effective-security/mcptools/internal/cli"
)

func main() {
	cmd := cli.NewRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
