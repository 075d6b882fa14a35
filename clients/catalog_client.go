package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"catalog-admin/models"

	"github.com/sirupsen/logrus"
)

// APIError is a non-2xx answer from the catalog platform.
type APIError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog api returned status %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the platform.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

type tokenKey struct{}

// WithToken attaches the admin bearer token used for calls made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// UploadFile is one file sent in a multipart upload batch.
type UploadFile struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryPolicy
	logger     *logrus.Entry
}

type CatalogClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Logger     *logrus.Logger
}

func NewCatalogClient(cfg CatalogClientConfig) *CatalogClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CatalogClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retry:      DefaultRetryPolicy(cfg.MaxRetries),
		logger:     logger.WithField("component", "catalog_client"),
	}
}

type userResponse struct {
	User models.SessionUser `json:"user"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type productResponse struct {
	Product models.Product `json:"product"`
}

type productListResponse struct {
	Products []models.Product `json:"products"`
	Count    int              `json:"count"`
}

type categoryResponse struct {
	ProductCategory models.Category `json:"product_category"`
}

type categoryListResponse struct {
	ProductCategories []models.Category `json:"product_categories"`
}

type tagListResponse struct {
	ProductTags []models.Tag `json:"product_tags"`
}

type uploadResponse struct {
	Uploads []models.Upload `json:"uploads"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateSession authenticates the admin and returns the platform's user.
func (c *CatalogClient) CreateSession(ctx context.Context, email, password string) (*models.SessionUser, error) {
	var out userResponse
	if err := c.do(ctx, http.MethodPost, "/admin/auth", credentials{email, password}, &out); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &out.User, nil
}

func (c *CatalogClient) GetToken(ctx context.Context, email, password string) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/admin/auth/token", credentials{email, password}, &out); err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("get token: empty access token")
	}
	return out.AccessToken, nil
}

func (c *CatalogClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out productListResponse
	if err := c.do(ctx, http.MethodGet, "/admin/products?limit=1000", nil, &out); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out.Products, nil
}

func (c *CatalogClient) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var out productResponse
	if err := c.do(ctx, http.MethodGet, "/admin/products/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &out.Product, nil
}

func (c *CatalogClient) CreateProduct(ctx context.Context, payload models.ProductPayload) (*models.Product, error) {
	var out productResponse
	if err := c.do(ctx, http.MethodPost, "/admin/products", payload, &out); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	c.logger.WithField("product_id", out.Product.ID).Info("product created")
	return &out.Product, nil
}

func (c *CatalogClient) UpdateProduct(ctx context.Context, id string, payload models.ProductPayload) (*models.Product, error) {
	var out productResponse
	if err := c.do(ctx, http.MethodPost, "/admin/products/"+url.PathEscape(id), payload, &out); err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	c.logger.WithField("product_id", out.Product.ID).Info("product updated")
	return &out.Product, nil
}

func (c *CatalogClient) DeleteProduct(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/admin/products/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}

func (c *CatalogClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out categoryListResponse
	if err := c.do(ctx, http.MethodGet, "/admin/product-categories?limit=1000", nil, &out); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out.ProductCategories, nil
}

func (c *CatalogClient) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var out categoryResponse
	if err := c.do(ctx, http.MethodGet, "/admin/product-categories/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}
	return &out.ProductCategory, nil
}

func (c *CatalogClient) CreateCategory(ctx context.Context, payload models.CategoryPayload) (*models.Category, error) {
	var out categoryResponse
	if err := c.do(ctx, http.MethodPost, "/admin/product-categories", payload, &out); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &out.ProductCategory, nil
}

func (c *CatalogClient) UpdateCategory(ctx context.Context, id string, payload models.CategoryPayload) (*models.Category, error) {
	var out categoryResponse
	if err := c.do(ctx, http.MethodPost, "/admin/product-categories/"+url.PathEscape(id), payload, &out); err != nil {
		return nil, fmt.Errorf("update category %s: %w", id, err)
	}
	return &out.ProductCategory, nil
}

func (c *CatalogClient) DeleteCategory(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/admin/product-categories/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}

func (c *CatalogClient) ListTags(ctx context.Context) ([]models.Tag, error) {
	var out tagListResponse
	if err := c.do(ctx, http.MethodGet, "/admin/product-tags?limit=1000", nil, &out); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return out.ProductTags, nil
}

// Upload sends every file in one multipart request and returns the stored URLs
// in upload order.
func (c *CatalogClient) Upload(ctx context.Context, files []UploadFile) ([]string, error) {
	if len(files) == 0 {
		return nil, errors.New("upload: no files")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, escapeQuotes(f.Filename)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("upload: %w", err)
		}
		if _, err := io.Copy(part, f.Body); err != nil {
			return nil, fmt.Errorf("upload %s: %w", f.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/admin/uploads", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out uploadResponse
	if err := c.send(req, &out); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	urls := make([]string, 0, len(out.Uploads))
	for _, u := range out.Uploads {
		urls = append(urls, u.URL)
	}
	return urls, nil
}

func (c *CatalogClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += c.retry.MaxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := c.newRequest(ctx, method, path, reader)
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		lastErr = c.send(req, out)
		if lastErr == nil || !c.retry.ShouldRetry(lastErr) || attempt == attempts {
			break
		}

		var retryAfter time.Duration
		var apiErr *APIError
		if errors.As(lastErr, &apiErr) {
			retryAfter = apiErr.RetryAfter
		}

		c.logger.WithFields(logrus.Fields{
			"method":  method,
			"path":    path,
			"attempt": attempt,
		}).WithError(lastErr).Warn("retrying catalog request")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retry.Backoff(attempt-1, retryAfter)):
		}
	}
	return lastErr
}

func (c *CatalogClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *CatalogClient) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("path", req.URL.Path).Error("catalog request failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, RetryAfter: parseRetryAfter(resp)}
		var body struct {
			Message string `json:"message"`
		}
		if raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); len(raw) > 0 {
			if json.Unmarshal(raw, &body) == nil {
				apiErr.Message = body.Message
			}
		}
		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
