package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/iudanet/centersync/pkg/api"
)

// DefaultTimeout таймаут запроса, если в конфигурации не задан
const DefaultTimeout = 30 * time.Second

// maxResponseBytes ограничение на чтение тела ответа
const maxResponseBytes = 1 << 20

// Client представляет HTTP клиент центрального API синхронизации
type Client struct {
	httpClient *http.Client
	encoder    *zstd.Encoder
	encErr     error
	baseURL    string
	encOnce    sync.Once
}

// NewClient создает новый API клиент
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Подписанный конверт переносим при редиректе
				if len(via) > 0 {
					for _, h := range []string{api.HeaderCenterID, api.HeaderSignature} {
						if v := via[0].Header.Get(h); v != "" {
							req.Header.Set(h, v)
						}
					}
				}
				return nil
			},
		},
	}
}

// CheckSyncAvailability спрашивает центр, разрешена ли синхронизация.
// Структурированный не-2xx ответ возвращается как *api.StatusError.
func (c *Client) CheckSyncAvailability(ctx context.Context, req api.CheckSyncAvailabilityRequest) (*api.StatusResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	var resp api.StatusResponse
	if err := c.doRequest(ctx, http.MethodPost, api.PathCheckSyncAvailability, nil, body, &resp); err != nil {
		return nil, fmt.Errorf("check sync availability request failed: %w", err)
	}
	return &resp, nil
}

// UploadChunk отправляет подписанный чанк как есть. Подпись должна покрывать body
// без сжатия; при compress=true тело передается с Content-Encoding: zstd.
func (c *Client) UploadChunk(ctx context.Context, centerID, signature string, body []byte, compress bool) (*api.StatusResponse, error) {
	headers := http.Header{}
	headers.Set(api.HeaderCenterID, centerID)
	headers.Set(api.HeaderSignature, signature)

	payload := body
	if compress {
		enc, err := c.zstdEncoder()
		if err != nil {
			return nil, err
		}
		payload = enc.EncodeAll(body, make([]byte, 0, len(body)/2))
		headers.Set("Content-Encoding", "zstd")
	}

	var resp api.StatusResponse
	if err := c.doRequest(ctx, http.MethodPost, api.PathUploadChunk, headers, payload, &resp); err != nil {
		return nil, fmt.Errorf("upload chunk request failed: %w", err)
	}
	return &resp, nil
}

// Health проверяет доступность центрального сервера
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, api.PathHealth, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	return &resp, nil
}

// zstdEncoder лениво создает encoder; EncodeAll безопасен для конкурентного вызова
func (c *Client) zstdEncoder() (*zstd.Encoder, error) {
	c.encOnce.Do(func() {
		c.encoder, c.encErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if c.encErr != nil {
			c.encErr = fmt.Errorf("failed to create zstd encoder: %w", c.encErr)
		}
	})
	return c.encoder, c.encErr
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, headers http.Header, body []byte, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &api.StatusError{HTTPStatus: resp.StatusCode}
		var statusResp api.StatusResponse
		if err := json.Unmarshal(respBody, &statusResp); err == nil {
			statusErr.Status = statusResp.Status
		}
		return statusErr
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
