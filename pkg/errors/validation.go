package errors

import (
	"strings"
	"unicode"
)

// ValidateTopicPrompt validates a user-supplied topic prompt before it is sent
// to the content service. The rules are intentionally conservative:
//   - No empty prompts
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateTopicPrompt(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return New(ErrCodeInvalidTopic, "topic cannot be empty")
	}

	if len(topic) > 256 {
		return New(ErrCodeInvalidTopic, "topic too long (max 256 characters)")
	}

	for _, r := range topic {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidTopic, "topic contains invalid control characters")
		}
	}

	return nil
}

// ValidateOutputPath validates a destination file path for exports and
// rendered artifacts. It prevents path traversal outside the working tree
// when the path comes from an API request rather than the local CLI.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "output path cannot contain traversal sequences")
	}

	return nil
}
