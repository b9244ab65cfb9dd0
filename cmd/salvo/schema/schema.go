// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package schema provides the schema command for displaying scenario schema help.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/matt-FFFFFF/salvo/internal/scenario"
	"github.com/urfave/cli/v3"
)

const (
	formatFlag = "format"
)

// SchemaCmd is the command that displays schema documentation for scenario files.
var SchemaCmd = &cli.Command{
	Name:        "schema",
	Description: "Display schema documentation for scenario files",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        formatFlag,
			Aliases:     []string{"f"},
			Usage:       "Output format: yaml or json",
			DefaultText: "yaml",
			Value:       "yaml",
		},
	},
	Action: actionFunc,
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	switch strings.ToLower(cmd.String(formatFlag)) {
	case "json":
		// Print the embedded JSON Schema that scenario files are validated against
		fmt.Print(string(scenario.SchemaJSON()))
		return nil
	case "yaml":
		fmt.Println("# Salvo Scenario Schema")
		fmt.Println("# This shows the complete structure of a scenario file")
		fmt.Println()
		fmt.Println("name: \"Health check under load\"  # Display name, defaults to the command line")
		fmt.Println("description: \"Hammers the healthz endpoint\"  # Free-form notes")
		fmt.Println("command: \"curl -fsS http://localhost:8080/healthz\"  # Required; run via the system shell")
		fmt.Println("concurrent: 10  # Maximum invocations in flight at once")
		fmt.Println("total: 100  # Total invocations to perform")
		fmt.Println("invocation_timeout: 60s  # Per-invocation kill timer, \"0\" disables")
		fmt.Println("env:  # Extra environment variables for every invocation")
		fmt.Println("  REQUEST_SOURCE: salvo")
		fmt.Println("cwd: \"\"  # Working directory, defaults to the current directory")
		fmt.Println("max_failure_rate: 0.05  # Optional; exit nonzero when exceeded")
		fmt.Println()
		fmt.Println("# Use 'salvo schema --format json' for the JSON Schema document.")
		return nil
	default:
		return cli.Exit(fmt.Sprintf("Invalid format: %s. Valid formats: yaml, json", cmd.String(formatFlag)), 1)
	}
}
