package uploadclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/goccy/go-json"
	"github.com/prappser/csvdrop/internal/storage"
	"github.com/valyala/fasthttp"
)

const UploadPath = "/api/upload"

type Uploader interface {
	Upload(ctx context.Context, file FileHandle) (*storage.UploadResponse, error)
}

// HTTPUploader posts one file per request to the upload endpoint. It sets no
// timeout of its own; a request waits for a response or a transport failure.
type HTTPUploader struct {
	client   *fasthttp.Client
	endpoint string
}

func NewHTTPUploader(baseURL string, client *fasthttp.Client) *HTTPUploader {
	if client == nil {
		client = &fasthttp.Client{Name: "csvupload"}
	}
	return &HTTPUploader{
		client:   client,
		endpoint: strings.TrimRight(baseURL, "/") + UploadPath,
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, file FileHandle) (*storage.UploadResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, contentType, err := encodeForm(file)
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(u.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentType)
	req.SetBody(body)

	if err := u.client.Do(req, resp); err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		message := "Upload failed"
		var errResp storage.ErrorResponse
		if err := json.Unmarshal(resp.Body(), &errResp); err == nil && errResp.Error != "" {
			message = errResp.Error
		}
		return nil, fmt.Errorf("upload rejected with status %d: %s", status, message)
	}

	var out storage.UploadResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &out, nil
}

func encodeForm(file FileHandle) ([]byte, string, error) {
	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", file.Name(), err)
	}
	defer src.Close()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", file.Name())
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", file.Name(), err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
