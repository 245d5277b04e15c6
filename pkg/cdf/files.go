package cdf

import (
	"bytes"
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// FileUpload describes the content object to create in the files resource.
type FileUpload struct {
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	MimeType   string `json:"mimeType,omitempty"`
	// SourceID back-references the instance node this content belongs to.
	// The node must already exist when the upload is issued.
	SourceID *NodeID `json:"sourceId,omitempty"`
}

// FileMetadata is the platform's record of an uploaded content object.
type FileMetadata struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	MimeType   string `json:"mimeType"`
	Uploaded   bool   `json:"uploaded"`
}

type fileCreateResponse struct {
	FileMetadata
	// Signed URL the content bytes must be PUT to. Valid briefly; we use it
	// immediately.
	UploadURL string `json:"uploadUrl"`
}

// UploadFile creates (or upserts) the content object's metadata and uploads
// its bytes. The files resource answers the metadata call with a signed
// upload URL; the bytes are PUT there without the API bearer token. Both
// exchanges happen inside this one call, so the caller sees a single
// blocking upload.
func (self *Client) UploadFile(ctx context.Context, upload FileUpload, content []byte) (*FileMetadata, error) {
	var created fileCreateResponse
	url := self.projectURL("/files") + "?overwrite=true"
	if err := self.do(ctx, http.MethodPost, url, &upload, &created); err != nil {
		return nil, errors.Wrap(err, "file metadata create failed")
	}
	if created.UploadURL == "" {
		return nil, errors.New("files resource returned no upload URL")
	}

	req, err := http.NewRequest(http.MethodPut, created.UploadURL, bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build content upload request")
	}
	req = req.WithContext(ctx)
	if upload.MimeType != "" {
		req.Header.Set("Content-Type", upload.MimeType)
	}

	resp, err := self.uploadHC.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "content upload failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, errors.Errorf("content upload rejected with status %d", resp.StatusCode)
	}

	meta := created.FileMetadata
	meta.Uploaded = true
	return &meta, nil
}
