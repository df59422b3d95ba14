package main

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const defaultTokenModel = "gpt-4o"

// countTokens returns the number of tokens printed encodes to for model. A
// model tiktoken does not know is tried as an encoding name.
func countTokens(printed string, model string) (int, error) {
	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		var encErr error
		tkm, encErr = tiktoken.GetEncoding(model)
		if encErr != nil {
			return 0, fmt.Errorf("failed to get tokenizer for model %q: %w", model, err)
		}
	}
	return len(tkm.Encode(printed, nil, nil)), nil
}

func buildTokenReport(printed string, model string, files int) (string, error) {
	n, err := countTokens(printed, model)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("tokens: %d (model %s, %d files, %d bytes)\n", n, model, files, len(printed)), nil
}
