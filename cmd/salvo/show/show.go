// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package show

import (
	"context"
	"errors"
	"os"

	"github.com/matt-FFFFFF/salvo/internal/volley"
	"github.com/urfave/cli/v3"
)

const (
	fileArg           = "file"
	jsonFlag          = "json"
	noPercentilesFlag = "no-percentiles"
	noSamplesFlag     = "no-samples"
)

var (
	// ErrReadFile is returned when the file cannot be read.
	ErrReadFile = errors.New("failed to read file")
	// ErrDecodeReports is returned when the reports cannot be decoded from the file.
	ErrDecodeReports = errors.New("failed to decode reports")
	// ErrWriteReports is returned when the reports cannot be written to stdout.
	ErrWriteReports = errors.New("failed to write reports to stdout")
)

// ShowCmd is the command that re-renders previously saved run reports.
var ShowCmd = &cli.Command{
	Name:        "show",
	Description: "Show previously saved run reports.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: fileArg,
		},
	},
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  jsonFlag,
			Usage: "Render each report as JSON instead of text.",
		},
		&cli.BoolFlag{
			Name:  noPercentilesFlag,
			Usage: "Omit the p50/p95/p99 duration rows.",
		},
		&cli.BoolFlag{
			Name:  noSamplesFlag,
			Usage: "Omit the failure samples.",
		},
	},
	Action: func(_ context.Context, cmd *cli.Command) error {
		file, err := os.Open(cmd.StringArg(fileArg))
		if err != nil {
			return errors.Join(ErrReadFile, err)
		}
		defer file.Close() // nolint:errcheck

		reports, err := volley.ReadBinaryReports(file)
		if err != nil {
			return errors.Join(ErrDecodeReports, err)
		}

		opts := volley.DefaultOutputOptions()
		opts.IncludePercentiles = !cmd.Bool(noPercentilesFlag)
		opts.IncludeFailureSamples = !cmd.Bool(noSamplesFlag)

		for _, report := range reports {
			if cmd.Bool(jsonFlag) {
				if err := report.WriteJSON(cmd.Writer); err != nil {
					return errors.Join(ErrWriteReports, err)
				}

				continue
			}

			if err := report.WriteText(cmd.Writer, opts); err != nil {
				return errors.Join(ErrWriteReports, err)
			}
		}

		return nil
	},
}
