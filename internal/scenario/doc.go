// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scenario loads load-test scenario definitions from YAML documents.
// Documents are validated against an embedded JSON schema before they are
// decoded, so schema violations surface with the offending path rather than
// as zero values downstream.
package scenario
