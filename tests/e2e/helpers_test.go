package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// BASE_URLの指すAPIに対して叩くテスト。未設定ならskip。
type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		t.Skip("BASE_URL not set; skipping e2e test")
	}

	return &TestClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	FullName string `json:"full_name"`
}

type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        UserDTO `json:"user"`
}

func (c *TestClient) doJSON(
	ctx context.Context,
	t *testing.T,
	method string,
	path string,
	bearer string,
	bodyBytes []byte,
) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if bodyBytes != nil {
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}
	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	return resp, respBody
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	return b
}

func mustUnmarshal(t *testing.T, body []byte, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json.Unmarshal failed: %v body=%s", err, string(body))
	}
}

// 管理者ログイン。ADMIN_EMAIL/ADMIN_PASSWORD未設定ならskip。
func adminLogin(t *testing.T, c *TestClient, ctx context.Context) string {
	t.Helper()

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		t.Skip("ADMIN_EMAIL / ADMIN_PASSWORD not set; skipping admin e2e test")
	}

	body := mustMarshal(t, map[string]string{"email": email, "password": password})
	resp, respBody := c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out LoginResponse
	mustUnmarshal(t, respBody, &out)
	return out.AccessToken
}

// 一般ユーザーを登録してログインする
func registerAndLogin(t *testing.T, c *TestClient, ctx context.Context) (string, UserDTO) {
	t.Helper()

	email := "e2e-" + time.Now().Format("20060102-150405.000000000") + "@example.com"
	password := "e2e-long-password-1"

	register := map[string]string{
		"email":          email,
		"password":       password,
		"full_name":      "E2E Tester",
		"phone":          "11-99999-0000",
		"address_street": "Rua Teste",
		"address_number": "42",
		"address_zip":    "01310-100",
		"address_city":   "Sao Paulo",
		"address_state":  "SP",
	}
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", mustMarshal(t, register))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	login := map[string]string{"email": email, "password": password}
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", mustMarshal(t, login))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out LoginResponse
	mustUnmarshal(t, body, &out)
	return out.AccessToken, out.User
}
