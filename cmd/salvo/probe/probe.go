// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matt-FFFFFF/salvo/internal/probe"
	"github.com/urfave/cli/v3"
)

const (
	socketArg   = "socket"
	messageFlag = "message"
	timeoutFlag = "timeout"

	defaultMessage = "ping"
	defaultTimeout = 5 * time.Second
)

// ErrNoSocket is returned when no socket path is supplied.
var ErrNoSocket = errors.New("no socket path supplied")

// ProbeCmd sends one message to a unix socket and prints the response.
// It is a pre-flight check for socket-fronted targets before a load run.
var ProbeCmd = &cli.Command{
	Name:        "probe",
	Description: "Send a single message to a unix socket and print the response.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: socketArg,
		},
	},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    messageFlag,
			Aliases: []string{"m"},
			Usage:   "Message to send.",
			Value:   defaultMessage,
		},
		&cli.DurationFlag{
			Name:  timeoutFlag,
			Usage: "Deadline for the whole exchange.",
			Value: defaultTimeout,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		path := cmd.StringArg(socketArg)
		if path == "" {
			return ErrNoSocket
		}

		ctx, cancel := context.WithTimeout(ctx, cmd.Duration(timeoutFlag))
		defer cancel()

		response, err := probe.Exchange(ctx, path, cmd.String(messageFlag))
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.Writer, string(response))

		return err
	},
}
