package services

import "context"

// AttachmentProcessor turns an uploaded file into a chat attachment: text
// formats become markdown content, images and other binaries become data
// URLs the model reads inline.
type AttachmentProcessor interface {
	Process(ctx context.Context, name, mimeType string, data []byte) (*Attachment, error)
}
