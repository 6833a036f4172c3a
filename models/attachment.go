package models

// AttachmentType classifies an attachment by the uploaded file extension.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentVideo AttachmentType = "video"
)

// Attachment is a stored upload belonging to the thread it was submitted
// with. Immutable once attached; persisted as a JSON array on the thread row.
type Attachment struct {
	Type      AttachmentType `json:"type"`
	URL       string         `json:"url"`
	Name      string         `json:"name"`
	SizeBytes int64          `json:"size_bytes"`
}
