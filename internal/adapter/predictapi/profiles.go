package predictapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

// SaveProfile PUTs the wizard submission to /v1/profiles/{userId}.
func (c *Client) SaveProfile(ctx domain.Context, p domain.StudentProfile) (domain.StudentProfile, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return domain.StudentProfile{}, fmt.Errorf("op=predictapi.save_profile: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/v1/profiles/"+url.PathEscape(p.UserID), bytes.NewReader(body))
	if err != nil {
		return domain.StudentProfile{}, fmt.Errorf("op=predictapi.save_profile: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	var out domain.StudentProfile
	if err := c.do(req, &out); err != nil {
		return domain.StudentProfile{}, fmt.Errorf("op=predictapi.save_profile: %w", err)
	}
	return out, nil
}

// UploadPhoto posts data as the multipart "photo" field and returns the stored URL.
func (c *Client) UploadPhoto(ctx domain.Context, userID string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("photo", "photo")
	if err != nil {
		return "", fmt.Errorf("op=predictapi.upload_photo: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", fmt.Errorf("op=predictapi.upload_photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("op=predictapi.upload_photo: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/profiles/"+url.PathEscape(userID)+"/photo", &buf)
	if err != nil {
		return "", fmt.Errorf("op=predictapi.upload_photo: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out struct {
		PhotoURL string `json:"photo_url"`
	}
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("op=predictapi.upload_photo: %w", err)
	}
	return out.PhotoURL, nil
}

// do sends req and decodes a 2xx JSON body into out. Other statuses become *StatusError
// carrying the envelope message.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(raw, &env)
		return &StatusError{Status: resp.StatusCode, Message: env.Error.Message}
	}
	return json.Unmarshal(raw, out)
}
