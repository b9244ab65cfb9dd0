// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package volley

// Batch identifies one slice of a load run.
type Batch struct {
	Index  int // Zero-based batch ordinal
	Offset int // Session id of the first invocation in this batch
	Size   int // Invocations in this batch, at most the concurrency limit
}

// PartitionBatches slices a run of total invocations into batches of at most
// limit. Session ids are global ordinals: batch i covers offset i*limit
// through i*limit+size-1, and they are never reset between batches. The
// final batch may be smaller than limit when the total is not an exact
// multiple; a zero or negative total yields no batches.
func PartitionBatches(total, limit int) []Batch {
	if total <= 0 || limit <= 0 {
		return nil
	}

	batches := make([]Batch, 0, (total+limit-1)/limit)

	for offset := 0; offset < total; offset += limit {
		batches = append(batches, Batch{
			Index:  len(batches),
			Offset: offset,
			Size:   min(limit, total-offset),
		})
	}

	return batches
}
