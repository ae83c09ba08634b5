package claim

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// DocumentStatus tracks whether a document is the current version.
type DocumentStatus string

const (
	DocumentActive     DocumentStatus = "Active"
	DocumentSuperseded DocumentStatus = "Superseded"
)

// Document is the metadata row for an uploaded claim artifact. The bytes
// live in blob storage under StorageKey; the row itself is immutable apart
// from the supersede transition.
type Document struct {
	ID            string         `json:"id"`
	ClaimID       string         `json:"claim_id"`
	FileName      string         `json:"file_name"`
	DocumentType  string         `json:"document_type"`
	StorageKey    string         `json:"storage_key"`
	FileSizeBytes int64          `json:"file_size_bytes"`
	ContentType   string         `json:"content_type"`
	UploadedBy    string         `json:"uploaded_by"`
	UploadedAt    time.Time      `json:"uploaded_at"`
	Status        DocumentStatus `json:"status"`
}

// NewDocument validates and constructs an Active document row.
func NewDocument(claimID, fileName, documentType, storageKey string, fileSizeBytes int64, contentType, uploadedBy string) (*Document, error) {
	switch {
	case claimID == "":
		return nil, Errorf(ErrValidation, "claim id is required")
	case strings.TrimSpace(fileName) == "":
		return nil, Errorf(ErrValidation, "file name is required")
	case strings.TrimSpace(documentType) == "":
		return nil, Errorf(ErrValidation, "document type is required")
	case fileSizeBytes <= 0:
		return nil, Errorf(ErrValidation, "file size must be positive")
	case strings.TrimSpace(contentType) == "":
		return nil, Errorf(ErrValidation, "content type is required")
	case strings.TrimSpace(uploadedBy) == "":
		return nil, Errorf(ErrValidation, "uploader identity is required")
	}
	return &Document{
		ID:            ulid.Make().String(),
		ClaimID:       claimID,
		FileName:      fileName,
		DocumentType:  documentType,
		StorageKey:    storageKey,
		FileSizeBytes: fileSizeBytes,
		ContentType:   contentType,
		UploadedBy:    uploadedBy,
		UploadedAt:    time.Now().UTC(),
		Status:        DocumentActive,
	}, nil
}

// MarkSuperseded retires an active document replaced by a newer upload.
func (d *Document) MarkSuperseded() error {
	if d.Status != DocumentActive {
		return Errorf(ErrInvalidState, "only active documents can be superseded, document %s is %s", d.ID, d.Status)
	}
	d.Status = DocumentSuperseded
	return nil
}
