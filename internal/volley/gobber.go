// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package volley

import (
	"encoding/gob"
	"errors"
	"io"
	"time"
)

var (
	// ErrWriteGob is returned when writing a report to binary format fails.
	ErrWriteGob = errors.New("failed to write binary report")
	// ErrReadGob is returned when reading a report from binary format fails.
	ErrReadGob = errors.New("failed to read binary report")
)

// Report is the saved form of one load run: the scenario identity, every
// invocation result, and the summary computed over them. Reports written
// with WriteBinary are re-rendered by the show command.
type Report struct {
	Label       string    // Scenario name
	Command     string    // The target command line
	Concurrency int       // Concurrency limit used for the run
	StartedAt   time.Time // When the run began
	Results     Results   // One entry per invocation started
	Summary     *Summary  // Aggregates computed once over Results
}

// Reports is a collection of saved runs, one per scenario executed.
type Reports []*Report

// HasFailure reports whether any run in the collection observed a failed
// invocation.
func (r Reports) HasFailure() bool {
	for _, report := range r {
		if report.Summary != nil && report.Summary.Failed > 0 {
			return true
		}
	}

	return false
}

// WriteBinary encodes the reports with encoding/gob.
func (r Reports) WriteBinary(w io.Writer) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(r); err != nil {
		return errors.Join(ErrWriteGob, err)
	}

	return nil
}

// ReadBinaryReports decodes reports written by WriteBinary.
func ReadBinaryReports(r io.Reader) (Reports, error) {
	var reports Reports

	dec := gob.NewDecoder(r)
	if err := dec.Decode(&reports); err != nil {
		return nil, errors.Join(ErrReadGob, err)
	}

	return reports, nil
}
