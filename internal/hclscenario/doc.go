// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package hclscenario loads scenario definitions from HCL configuration
// files. HCL scenarios support variables, locals and expressions, so a
// single file can parameterise command lines across environments.
package hclscenario
