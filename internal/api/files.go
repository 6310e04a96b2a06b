package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// UploadResponse is the backend's answer to a document upload. When the
// analysis opened a conversation, IDChat and Titulo seed the active chat.
type UploadResponse struct {
	IDFile      int    `json:"id_file"`
	AIOverview  string `json:"ai_overview"`
	IDChat      *int   `json:"id_chat,omitempty"`
	Titulo      string `json:"titulo,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	FileType    string `json:"file_type,omitempty"`
	Observation string `json:"observation,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
}

// UploadFile sends a local file for analysis, with an optional observation
// the user typed alongside it.
func (c *Client) UploadFile(ctx context.Context, path, observation string) (*UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("file_name", name); err != nil {
		return nil, err
	}
	if err := w.WriteField("file_type", ext); err != nil {
		return nil, err
	}
	if obs := strings.TrimSpace(observation); obs != "" {
		if err := w.WriteField("observation", obs); err != nil {
			return nil, err
		}
	}
	part, err := createFilePart(w, "file_data", name)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+filesPath, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	raw, err := c.roundTrip(req, filesPath)
	if err != nil {
		return nil, err
	}
	var resp UploadResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &resp, nil
}

func createFilePart(w *multipart.Writer, field, filename string) (io.Writer, error) {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	return w.CreatePart(h)
}
