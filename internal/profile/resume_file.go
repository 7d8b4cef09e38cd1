package profile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	formfillErrors "formfill/internal/errors"

	"github.com/ledongthuc/pdf"
)

// ReadResumeFile loads resume text from a file. PDF files go through text
// extraction; everything else is read as plain text.
func ReadResumeFile(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", formfillErrors.NewIOError(formfillErrors.ErrCodeResumeUnreadable,
			"Failed to read resume file", err).WithContext("path", path)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", formfillErrors.NewIOError(formfillErrors.ErrCodeResumeUnreadable,
			"Failed to open PDF resume", err).WithContext("path", path)
	}
	defer func() {
		_ = f.Close()
	}()

	var buf bytes.Buffer
	reader, err := r.GetPlainText()
	if err != nil {
		return "", formfillErrors.NewIOError(formfillErrors.ErrCodeResumeUnreadable,
			"Failed to extract text from PDF resume", err).WithContext("path", path)
	}
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", formfillErrors.NewIOError(formfillErrors.ErrCodeResumeUnreadable,
			"Failed to extract text from PDF resume", err).WithContext("path", path)
	}
	return buf.String(), nil
}
