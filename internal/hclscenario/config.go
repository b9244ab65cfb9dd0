// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package hclscenario

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Azure/golden"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/spf13/afero"
)

const (
	salvoConfigFileExt = ".salvo.hcl"
)

var _ golden.Config = &SalvoConfig{}

// FsFactory returns the filesystem scenario files are read from. Tests stub
// it with an in-memory filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

var (
	// ErrInitConfig is returned when the Salvo configuration cannot be initialized.
	ErrInitConfig = errors.New("failed to initialize Salvo configuration")
	// ErrNoSalvoConfigFile is returned when no `.salvo.hcl` file is found in the specified directory.
	ErrNoSalvoConfigFile = errors.New("no `.salvo.hcl` file found in the specified directory")
	// ErrParseSalvoConfigFile is returned when there is an error parsing the `.salvo.hcl` file.
	ErrParseSalvoConfigFile = errors.New("failed to parse blocks in the configuration file")
)

// SalvoConfig represents the configuration for the Salvo system.
type SalvoConfig struct {
	*golden.BaseConfig
}

// ErrInvalidBlockType represents an error for an invalid block type in the Salvo configuration.
type ErrInvalidBlockType struct {
	BlockType string
	Range     hcl.Range
}

// NewErrInvalidBlockType creates a new ErrInvalidBlockType with the specified block type and range.
func NewErrInvalidBlockType(blockType string, r hcl.Range) *ErrInvalidBlockType {
	return &ErrInvalidBlockType{
		BlockType: blockType,
		Range:     r,
	}
}

// Error implements the error interface for ErrInvalidBlockType.
func (e *ErrInvalidBlockType) Error() string {
	return fmt.Sprintf("invalid block type: %s at %s", e.BlockType, e.Range.String())
}

// NewSalvoConfig creates a new SalvoConfig instance with the provided base directory,
// CLI flag assigned variables, context, and HCL blocks.
func NewSalvoConfig(
	ctx context.Context,
	baseDir string,
	cliFlagAssignedVariables []golden.CliFlagAssignedVariables,
	hclBlocks []*golden.HclBlock,
) (*SalvoConfig, error) {
	cfg := &SalvoConfig{
		BaseConfig: golden.NewBasicConfig(baseDir, "salvo", "salvo", nil, cliFlagAssignedVariables, ctx),
	}

	err := golden.InitConfig(cfg, hclBlocks)

	if err != nil {
		err = errors.Join(ErrInitConfig, err)
	}

	return cfg, err
}

// BuildSalvoConfig constructs a SalvoConfig instance by loading HCL blocks
// from the specified configuration directory.
func BuildSalvoConfig(
	ctx context.Context,
	baseDir, cfgDir string,
	cliFlagAssignedVariables []golden.CliFlagAssignedVariables,
) (*SalvoConfig, error) {
	var err error

	hclBlocks, err := loadSalvoHclBlocks(false, cfgDir)
	if err != nil {
		return nil, err
	}

	c, err := NewSalvoConfig(ctx, baseDir, cliFlagAssignedVariables, hclBlocks)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func loadSalvoHclBlocks(ignoreUnsupportedBlock bool, dir string) ([]*golden.HclBlock, error) {
	blocks, err := parseScenarioFiles(dir)
	if err != nil {
		return nil, err
	}

	return filterSupportedBlocks(blocks, ignoreUnsupportedBlock)
}

// parseScenarioFiles reads every `.salvo.hcl` file in dir and returns the raw
// HCL blocks they contain.
func parseScenarioFiles(dir string) ([]*golden.HclBlock, error) {
	fs := FsFactory()

	matches, err := afero.Glob(fs, filepath.Join(dir, "*"+salvoConfigFileExt))
	if err != nil {
		// Glob only fails on a malformed pattern, and ours is fixed.
		panic(err)
	}

	if len(matches) == 0 {
		return nil, ErrNoSalvoConfigFile
	}

	var merr error

	var blocks []*golden.HclBlock

	for _, filename := range matches {
		content, fsErr := afero.ReadFile(fs, filename)
		if fsErr != nil {
			merr = multierror.Append(merr, fsErr)
			continue
		}

		readFile, diag := hclsyntax.ParseConfig(content, filename, hcl.InitialPos)
		if diag.HasErrors() {
			merr = multierror.Append(merr, diag.Errs()...)
			continue
		}

		// golden wants both representations of each block.
		writeFile, _ := hclwrite.ParseConfig(content, filename, hcl.InitialPos)
		readBody := readFile.Body.(*hclsyntax.Body)
		blocks = append(blocks, golden.AsHclBlocks(readBody.Blocks, writeFile.Body().Blocks())...)
	}

	if merr != nil {
		return nil, errors.Join(ErrParseSalvoConfigFile, merr)
	}

	return blocks, nil
}

// filterSupportedBlocks keeps the block types golden has a registration for.
// Unknown types are configuration errors unless ignore is set.
func filterSupportedBlocks(blocks []*golden.HclBlock, ignore bool) ([]*golden.HclBlock, error) {
	var merr error

	var supported []*golden.HclBlock

	for _, b := range blocks {
		if golden.IsBlockTypeWanted(b.Type) {
			supported = append(supported, b)
			continue
		}

		if !ignore {
			merr = multierror.Append(merr, NewErrInvalidBlockType(b.Type, b.Range()))
		}
	}

	if merr != nil {
		return supported, errors.Join(ErrParseSalvoConfigFile, merr)
	}

	return supported, nil
}
