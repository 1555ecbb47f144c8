package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"floral_essence/internal/domain/models"
	"floral_essence/internal/transport/http/dto/request"
	"floral_essence/internal/transport/http/dto/response"

	"golang.org/x/sync/errgroup"
)

// APIError is a non-2xx answer of the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded %d", e.Status)
	}
	return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// File is an upload source.
type File struct {
	Name   string
	Reader io.Reader
}

type Client struct {
	log     *slog.Logger
	baseURL string
	http    *http.Client
	token   string
}

func New(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken makes later requests carry a bearer token.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Ping(ctx context.Context) error {
	var out response.Response
	return c.do(ctx, http.MethodGet, "/api/ping", nil, "", nil, &out)
}

func (c *Client) GetDatabase(ctx context.Context) (models.Document, error) {
	const op = "client.GetDatabase"

	var out response.DatabaseResponse
	if err := c.do(ctx, http.MethodGet, "/api/database", nil, "", nil, &out); err != nil {
		return models.Document{}, fmt.Errorf("%s: %w", op, err)
	}
	return out.Data, nil
}

// SaveDatabase replaces the server document. A non-nil revision is sent as
// If-Match and the server answers 409 when it no longer matches.
func (c *Client) SaveDatabase(ctx context.Context, doc models.Document, revision *int64) (int64, error) {
	const op = "client.SaveDatabase"

	body, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	headers := http.Header{}
	if revision != nil {
		headers.Set("If-Match", strconv.FormatInt(*revision, 10))
	}

	var out response.SaveDatabaseResponse
	if err := c.do(ctx, http.MethodPost, "/api/database", bytes.NewReader(body), "application/json", headers, &out); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return out.Revision, nil
}

func (c *Client) Upload(ctx context.Context, f File) (models.UploadResult, error) {
	const op = "client.Upload"

	body, contentType, err := multipartBody("image", []File{f})
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("%s: %w", op, err)
	}

	var out response.UploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/upload", body, contentType, nil, &out); err != nil {
		return models.UploadResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return out.UploadResult, nil
}

func (c *Client) UploadMultiple(ctx context.Context, files []File) ([]models.UploadResult, error) {
	const op = "client.UploadMultiple"

	body, contentType, err := multipartBody("images", files)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out response.UploadMultipleResponse
	if err := c.do(ctx, http.MethodPost, "/api/upload-multiple", body, contentType, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out.Images, nil
}

// DeleteUpload removes a stored file. A file that is already gone counts
// as deleted.
func (c *Client) DeleteUpload(ctx context.Context, filename string) error {
	const op = "client.DeleteUpload"

	var out response.Response
	err := c.do(ctx, http.MethodDelete, "/api/upload/"+url.PathEscape(filename), nil, "", nil, &out)
	if err != nil && StatusOf(err) != http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) RenameUpload(ctx context.Context, oldFilename, desired string) (models.RenameResult, error) {
	const op = "client.RenameUpload"

	body, err := json.Marshal(request.RenameUploadRequest{NewFilename: desired})
	if err != nil {
		return models.RenameResult{}, fmt.Errorf("%s: %w", op, err)
	}

	var out response.RenameResponse
	path := "/api/rename-upload/" + url.PathEscape(oldFilename)
	if err := c.do(ctx, http.MethodPut, path, bytes.NewReader(body), "application/json", nil, &out); err != nil {
		return models.RenameResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return out.RenameResult, nil
}

func (c *Client) ListUploads(ctx context.Context, query string) ([]models.UploadedImage, error) {
	const op = "client.ListUploads"

	path := "/api/uploads"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}

	var out response.UploadsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, "", nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out.Images, nil
}

// Login checks the admin credentials and remembers the returned token.
func (c *Client) Login(ctx context.Context, username, password string) (models.AdminToken, error) {
	const op = "client.Login"

	body, err := json.Marshal(request.LoginRequest{Username: username, Password: password})
	if err != nil {
		return models.AdminToken{}, fmt.Errorf("%s: %w", op, err)
	}

	var out response.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", bytes.NewReader(body), "application/json", nil, &out); err != nil {
		return models.AdminToken{}, fmt.Errorf("%s: %w", op, err)
	}

	c.token = out.Token
	return models.AdminToken{AccessToken: out.Token, ExpiresAt: out.ExpiresAt}, nil
}

// Library is the media library view: stored files plus the document that
// holds their metadata.
type Library struct {
	Images   []models.UploadedImage
	Document models.Document
}

// LoadLibrary fetches the upload listing and the document concurrently.
func (c *Client) LoadLibrary(ctx context.Context) (Library, error) {
	const op = "client.LoadLibrary"

	var lib Library
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		images, err := c.ListUploads(gctx, "")
		lib.Images = images
		return err
	})
	g.Go(func() error {
		doc, err := c.GetDatabase(gctx)
		lib.Document = doc
		return err
	})

	if err := g.Wait(); err != nil {
		return Library{}, fmt.Errorf("%s: %w", op, err)
	}
	return lib, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, headers http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp response.ErrorResponse
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		c.log.Debug("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func multipartBody(field string, files []File) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, f := range files {
		part, err := w.CreateFormFile(field, f.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf, w.FormDataContentType(), nil
}
