// Package main is the entry point for the esvm CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/thoreinstein/esvm/cmd/esvm/commands"
	esvmerrors "github.com/thoreinstein/esvm/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var exitErr *esvmerrors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "Suggestion: %s\n", exitErr.Suggestion)
		}
	}
	os.Exit(esvmerrors.Code(err))
}
