package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// APIClient talks to the live intake API on behalf of the offline queue.
// It implements both Uploader and Submitter.
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewAPIClient builds a client rooted at the API prefix (e.g.
// "https://host/api/v1") authenticating with the given bearer token.
func NewAPIClient(baseURL, bearerToken string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   bearerToken,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts the photo blob to the evidence endpoint and returns its URL.
func (c *APIClient) Upload(ctx context.Context, payload Submission, blob []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	ext := payload.PhotoExt
	if ext == "" {
		ext = "jpg"
	}
	part, err := w.CreateFormFile("photo", "evidence."+strings.TrimPrefix(ext, "."))
	if err != nil {
		return "", fmt.Errorf("offline upload: create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(blob)); err != nil {
		return "", fmt.Errorf("offline upload: write blob: %w", err)
	}
	_ = w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/attendance/evidence", &buf)
	if err != nil {
		return "", fmt.Errorf("offline upload: create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("offline upload: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("offline upload: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("offline upload: decode response: %w", err)
	}
	var data struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.URL == "" {
		return "", fmt.Errorf("offline upload: missing url in response")
	}
	return data.URL, nil
}

// Submit delivers the manual payload with its uploaded photo URL. A 409 from
// the server maps to ErrDuplicate so the syncer can drain the item.
func (c *APIClient) Submit(ctx context.Context, payload Submission, photoURL string) error {
	body := map[string]interface{}{
		"schedule_id":     payload.ScheduleID,
		"attendance_date": payload.AttendanceDate,
		"status":          payload.Status,
		"photo_url":       photoURL,
	}
	if payload.Notes != nil {
		body["notes"] = *payload.Notes
	}
	if payload.Fix != nil {
		body["location"] = map[string]interface{}{
			"sample": map[string]interface{}{
				"latitude":  payload.Fix.Latitude,
				"longitude": payload.Fix.Longitude,
				"accuracy":  payload.Fix.Accuracy,
			},
		}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("offline submit: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/attendance/manual", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("offline submit: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("offline submit: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return ErrDuplicate
	default:
		return fmt.Errorf("offline submit: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
}
