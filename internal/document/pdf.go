// Package document extracts plain text from uploaded resume files.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText indicates the document was readable but contained no extractable
// text (for example a scanned image PDF).
var ErrNoText = errors.New("document contains no extractable text")

// ExtractText extracts plain text from the provided PDF bytes. An error means
// the content is unreadable or unsupported; callers treat it as "no text",
// not as a fatal condition.
func ExtractText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", errors.New("document is empty")
	}

	// The pdf parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}

	text = strings.TrimSpace(buf.String())
	if text == "" {
		return "", ErrNoText
	}

	return text, nil
}

// ExtractFile reads the file at path and extracts its text.
func ExtractFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document file: %w", err)
	}

	return ExtractText(data)
}
