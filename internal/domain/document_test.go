package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDocument() *Document {
	return &Document{
		ID:         "d1",
		Name:       "FCOM Vol 1",
		Type:       DocumentTypeFCOM,
		S3Key:      "documents/1-fcom.pdf",
		Status:     DocumentStatusReady,
		UploadDate: time.Now(),
	}
}

func TestValidateDocument(t *testing.T) {
	assert.NoError(t, ValidateDocument(validDocument()))
}

func TestValidateDocument_RejectsUnknownType(t *testing.T) {
	doc := validDocument()
	doc.Type = "CHECKLIST"

	err := ValidateDocument(doc)
	assert.ErrorIs(t, err, ErrInvalidDocumentType)
}

func TestDomainError_WithCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := ErrStorageOperationFail.WithCause(cause)

	assert.Equal(t, ErrStorageOperationFail.Code, err.Code)
	assert.Equal(t, ErrStorageOperationFail.Message, err.Message)
	assert.ErrorIs(t, err, cause)

	// The sentinel itself stays cause-free.
	require.Nil(t, ErrStorageOperationFail.Err)
}
