// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package show

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matt-FFFFFF/salvo/internal/volley"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestShowCmd(t *testing.T) {
	results := volley.Results{
		&volley.Result{SessionID: 0, Success: true, Duration: 10 * time.Millisecond},
		&volley.Result{SessionID: 1, Success: true, Duration: 20 * time.Millisecond},
	}

	reports := volley.Reports{
		{
			Label:       "checkout",
			Command:     "curl -fsS http://localhost:8080/checkout",
			Concurrency: 4,
			StartedAt:   time.Now(),
			Results:     results,
			Summary:     volley.Summarize(results, 2, 30*time.Millisecond),
		},
	}

	path := filepath.Join(t.TempDir(), "reports.gob")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, reports.WriteBinary(f))
	require.NoError(t, f.Close())

	buf := new(bytes.Buffer)
	root := &cli.Command{
		Commands: []*cli.Command{ShowCmd},
		Writer:   buf,
	}

	require.NoError(t, root.Run(context.Background(), []string{"salvo", "show", path}))

	assert.Contains(t, buf.String(), "checkout")
	assert.Contains(t, buf.String(), "Successful requests:")
}

func TestShowCmd_MissingFile(t *testing.T) {
	root := &cli.Command{
		Commands: []*cli.Command{ShowCmd},
	}

	err := root.Run(context.Background(), []string{"salvo", "show", filepath.Join(t.TempDir(), "absent.gob")})

	assert.ErrorIs(t, err, ErrReadFile)
}
