package skills

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"resumefit/internal/errors"
)

// LoadVocabulary returns the vocabulary stored at path, or the built-in one
// when path is empty.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		vocab, err := DefaultVocabulary()
		if err != nil {
			return nil, err
		}
		log.Printf("[CONFIG] Using built-in skill vocabulary (%d skills)", vocab.Len())
		return vocab, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeVocabulary,
			fmt.Sprintf("failed to resolve vocabulary path '%s'", path), err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil, errors.NewConfigError(errors.ErrCodeVocabulary,
			fmt.Sprintf("vocabulary file not found: %s", absPath), err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeVocabulary,
			fmt.Sprintf("failed to read vocabulary file '%s'", absPath), err)
	}

	if strings.TrimSpace(string(content)) == "" {
		return nil, errors.NewConfigError(errors.ErrCodeVocabulary,
			fmt.Sprintf("vocabulary file '%s' is empty", absPath), nil)
	}

	vocab, err := ParseVocabulary(content)
	if err != nil {
		return nil, err
	}

	log.Printf("[CONFIG] Successfully loaded skill vocabulary from file: %s (%d skills)", absPath, vocab.Len())
	return vocab, nil
}
