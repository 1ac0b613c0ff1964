// Cloudinary REST API client used for menu image storage.
//
// Environment:
//   - CLOUDINARY_CLOUD_NAME
//   - CLOUDINARY_API_KEY
//   - CLOUDINARY_API_SECRET
//   - CLOUDINARY_FOLDER (default: gumusqr) — the namespace marker that
//     identifies URLs managed by this service

package client

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gumusqr/backend/internal/config"
)

// uploadTransformation bounds every stored image to 1200x1200 and lets
// Cloudinary pick quality and delivery format. Fixed policy, not
// caller-configurable.
const uploadTransformation = "c_limit,h_1200,w_1200/q_auto:good/f_auto"

type CloudinaryClient struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	rootFolder string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

type destroyResponse struct {
	Result string `json:"result"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewCloudinaryClient(cfg config.CloudinaryConfig) (*CloudinaryClient, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("missing CLOUDINARY_CLOUD_NAME/CLOUDINARY_API_KEY/CLOUDINARY_API_SECRET")
	}
	return &CloudinaryClient{
		cloudName:  cfg.CloudName,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		rootFolder: cfg.Folder,
		baseURL:    "https://api.cloudinary.com/v1_1",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}, nil
}

// Upload stores an image (base64 data URI or remote URL, as accepted by the
// Cloudinary upload API) under rootFolder/folder and returns its durable
// HTTPS URL.
func (c *CloudinaryClient) Upload(ctx context.Context, data, folder string) (string, error) {
	if strings.TrimSpace(data) == "" {
		return "", fmt.Errorf("empty image payload")
	}

	params := url.Values{}
	params.Set("folder", c.rootFolder+"/"+folder)
	params.Set("public_id", uuid.NewString())
	params.Set("transformation", uploadTransformation)
	params.Set("timestamp", fmt.Sprintf("%d", c.now().Unix()))
	c.sign(params)
	params.Set("file", data)

	var res uploadResponse
	if err := c.post(ctx, "image/upload", params, &res); err != nil {
		return "", err
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload rejected: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

// Delete removes a previously uploaded asset by its delivery URL. URLs that
// are empty or do not carry the configured namespace marker are ignored, so
// unrelated URLs can never be destroyed by accident.
func (c *CloudinaryClient) Delete(ctx context.Context, assetURL string) error {
	publicID, ok := c.publicIDFromURL(assetURL)
	if !ok {
		return nil
	}

	params := url.Values{}
	params.Set("public_id", publicID)
	params.Set("timestamp", fmt.Sprintf("%d", c.now().Unix()))
	c.sign(params)

	var res destroyResponse
	if err := c.post(ctx, "image/destroy", params, &res); err != nil {
		return err
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy failed: result=%q error=%q", res.Result, res.Error.Message)
	}
	return nil
}

// publicIDFromURL extracts the Cloudinary public ID from a delivery URL by
// locating the namespace marker segment and stripping the file extension.
// Reports false when the URL is not managed by this service.
func (c *CloudinaryClient) publicIDFromURL(assetURL string) (string, bool) {
	if assetURL == "" {
		return "", false
	}
	parsed, err := url.Parse(assetURL)
	if err != nil {
		return "", false
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	start := -1
	for i, segment := range segments {
		if segment == c.rootFolder {
			start = i
			break
		}
	}
	if start == -1 {
		return "", false
	}

	publicID := strings.Join(segments[start:], "/")
	publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	if publicID == "" {
		return "", false
	}
	return publicID, true
}

// sign adds api_key and the request signature: the sha1 of the sorted
// key=value pairs concatenated with the API secret, per the Cloudinary
// authentication scheme.
func (c *CloudinaryClient) sign(params url.Values) {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params.Get(key))
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	params.Set("signature", hex.EncodeToString(sum[:]))
	params.Set("api_key", c.apiKey)
}

func (c *CloudinaryClient) post(ctx context.Context, action string, params url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, c.cloudName, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("cloudinary returned status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("cloudinary returned unexpected body (status %d)", resp.StatusCode)
	}
	return nil
}
