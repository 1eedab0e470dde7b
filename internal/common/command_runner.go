package common

import (
	"context"
	"fmt"

	"resumefit/internal/errors"
)

// OperationFunc turns the contents of the input files into a result.
type OperationFunc[Output any] func(ctx context.Context, contents []string) (Output, error)

// RunFileCommand reads the named input files, runs op on their contents and
// renders the result according to cmdConfig.
func RunFileCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	files []string,
	op OperationFunc[Output],
) error {
	fileProcessor := NewFileProcessor(cmdConfig.MaxFileSize, logger)
	outputHandler := NewOutputHandler(logger)

	// Fail on a bad output path before doing any work.
	if err := fileProcessor.ValidateOutputFile(cmdConfig.OutputFile); err != nil {
		return err
	}

	contents, err := fileProcessor.ValidateAndReadFiles(files...)
	if err != nil {
		return err
	}

	result, err := op(ctx, contents)
	if err != nil {
		return err
	}

	if err := outputHandler.HandleOutput(result, cmdConfig); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
