// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package probe implements a single raw-socket exchange with a target
// daemon. It exists for pre-flight checks: confirm the daemon is listening
// and see what it says before pointing a load run at it.
package probe

import (
	"context"
	"errors"
	"io"
	"net"
)

// readLimit caps a probe response to a single small read.
const readLimit = 1024

var (
	// ErrDialSocket is returned when the socket cannot be dialled.
	ErrDialSocket = errors.New("failed to dial socket")
	// ErrWriteSocket is returned when the message cannot be written.
	ErrWriteSocket = errors.New("failed to write to socket")
	// ErrReadSocket is returned when the response cannot be read.
	ErrReadSocket = errors.New("failed to read from socket")
)

// Exchange connects to the unix socket at path, writes the message and
// returns the first chunk of the response. A daemon that closes the
// connection without replying yields an empty response, not an error.
func Exchange(ctx context.Context, path, message string) ([]byte, error) {
	var d net.Dialer

	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, errors.Join(ErrDialSocket, err)
	}

	defer conn.Close() //nolint:errcheck

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write([]byte(message)); err != nil {
		return nil, errors.Join(ErrWriteSocket, err)
	}

	buf := make([]byte, readLimit)

	n, err := conn.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrReadSocket, err)
	}

	return buf[:n], nil
}
