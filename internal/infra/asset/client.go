package asset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// 外部アセットホストのHTTPクライアント。
// アップロードはmultipart、削除はpublic_id指定のDELETE。
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL string, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	PublicID string `json:"public_id"`
	URL      string `json:"secure_url"`
}

// 画像をアップロードして公開URLとpublic_idを返す。
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (string, string, error) {
	var body strings.Builder
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", "", err
	}
	if err := mw.Close(); err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images", strings.NewReader(body.String()))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("asset upload failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("asset upload failed: status=%d", resp.StatusCode)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("asset upload: decode response: %w", err)
	}
	if out.PublicID == "" || out.URL == "" {
		return "", "", fmt.Errorf("asset upload: incomplete response")
	}

	return out.URL, out.PublicID, nil
}

// public_idの画像を削除。404は成功扱い（冪等）。
func (c *Client) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	u := c.baseURL + "/images/" + url.PathEscape(publicID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("asset delete failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("asset delete failed: status=%d", resp.StatusCode)
	}
	return nil
}
