// Package captcha verifies CAPTCHA tokens submitted with public forms.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scaffold/internal/middleware"
)

// SiteVerifyURL is Google's reCAPTCHA verification endpoint.
const SiteVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Verifier checks a CAPTCHA response token.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) bool
}

// New returns a reCAPTCHA verifier for privateKey, or a verifier that accepts
// everything when privateKey is empty.
func New(privateKey string) Verifier {
	if strings.TrimSpace(privateKey) == "" {
		return passThrough{}
	}
	return NewRecaptcha(privateKey, SiteVerifyURL)
}

type passThrough struct{}

func (passThrough) Verify(context.Context, string, string) bool { return true }

// Recaptcha calls the siteverify API.
type Recaptcha struct {
	secret     string
	endpoint   string
	httpClient *http.Client
}

// NewRecaptcha returns a verifier posting to endpoint.
func NewRecaptcha(secret, endpoint string) *Recaptcha {
	return &Recaptcha{
		secret:   secret,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify reports whether token is a valid solved challenge. Transport and
// decoding failures count as not verified.
func (r *Recaptcha) Verify(ctx context.Context, token, remoteIP string) bool {
	if token == "" {
		return false
	}

	form := url.Values{}
	form.Set("secret", r.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	resp, err := r.post(ctx, form)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "reCAPTCHA verification failed", slog.String("error", err.Error()))
		return false
	}
	if !resp.Success {
		middleware.Logger.InfoContext(ctx, "reCAPTCHA rejected", slog.Any("error_codes", resp.ErrorCodes))
	}
	return resp.Success
}

func (r *Recaptcha) post(ctx context.Context, form url.Values) (*siteVerifyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http post: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("siteverify status %d", res.StatusCode)
	}

	var out siteVerifyResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
