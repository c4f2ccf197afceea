package domain

import (
	"fmt"
	"time"
)

// DocumentType represents the manual category of a document
type DocumentType string

const (
	DocumentTypeFCOM  DocumentType = "FCOM"
	DocumentTypeQRH   DocumentType = "QRH"
	DocumentTypeSOP   DocumentType = "SOP"
	DocumentTypeMEL   DocumentType = "MEL"
	DocumentTypeOther DocumentType = "OTHER"
)

// DocumentStatus represents the lifecycle status of a document
type DocumentStatus string

const (
	DocumentStatusReady   DocumentStatus = "ready"
	DocumentStatusDeleted DocumentStatus = "deleted"
)

// Document represents an uploaded PDF manual. A document in deleted
// status is hidden from listings and retrieval but its chunks and the
// stored object are retained so it can be restored.
type Document struct {
	ID           string
	Name         string
	Type         DocumentType
	AircraftType string
	Version      string
	Notes        string
	S3Key        string
	PageCount    int
	Status       DocumentStatus
	QueryCount   int64
	UploadedBy   string
	UploadDate   time.Time
	DeletedAt    *time.Time
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.Name == "" {
		return fmt.Errorf("document Name is required")
	}

	if d.S3Key == "" {
		return fmt.Errorf("document S3Key is required")
	}

	if !isValidDocumentType(d.Type) {
		return ErrInvalidDocumentType
	}

	if !isValidDocumentStatus(d.Status) {
		return fmt.Errorf("document Status is invalid: %s", d.Status)
	}

	return nil
}

// isValidDocumentType checks if a DocumentType is valid
func isValidDocumentType(t DocumentType) bool {
	switch t {
	case DocumentTypeFCOM, DocumentTypeQRH, DocumentTypeSOP, DocumentTypeMEL, DocumentTypeOther:
		return true
	}
	return false
}

// isValidDocumentStatus checks if a DocumentStatus is valid
func isValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusReady, DocumentStatusDeleted:
		return true
	}
	return false
}
