package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"user-insight/internal/domain"
)

// Client es la frontera hacia la plataforma de analytics: lectura de
// propiedades auxiliares y sincronización de los atributos predichos.
type Client interface {
	// GetProperty devuelve nil sin error cuando el usuario no tiene perfil.
	GetProperty(ctx context.Context, userID int64) (*domain.ExternalProperty, error)
	SetProperties(ctx context.Context, userID int64, props map[string]string) error
}

// HTTPClient implementa Client contra la API engage de Mixpanel.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

func NewHTTPClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *HTTPClient) GetProperty(ctx context.Context, userID int64) (*domain.ExternalProperty, error) {
	form := url.Values{}
	form.Set("distinct_id", strconv.FormatInt(userID, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/2.0/engage", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("engage query error: status=%d", resp.StatusCode)
	}

	var qr engageQueryResponse
	if err := json.Unmarshal(respBody, &qr); err != nil {
		return nil, fmt.Errorf("unmarshal engage response: %w", err)
	}
	if len(qr.Results) == 0 {
		return nil, nil
	}

	p := qr.Results[0].Properties
	return &domain.ExternalProperty{
		City:        p.City,
		Region:      p.Region,
		CountryCode: p.CountryCode,
		IsEducation: p.IsStudent,
	}, nil
}

func (c *HTTPClient) SetProperties(ctx context.Context, userID int64, props map[string]string) error {
	payload := []engageSet{{
		Token:      c.token,
		DistinctID: strconv.FormatInt(userID, 10),
		Set:        props,
	}}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal engage payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/engage#profile-set", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Warn("engage set error", zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))
		}
		return fmt.Errorf("engage set error: status=%d", resp.StatusCode)
	}
	// La API responde "1" en éxito y "0" en rechazo silencioso.
	if strings.TrimSpace(string(respBody)) == "0" {
		return errors.New("engage set rejected")
	}
	return nil
}

type engageSet struct {
	Token      string            `json:"$token"`
	DistinctID string            `json:"$distinct_id"`
	Set        map[string]string `json:"$set"`
}

type engageQueryResponse struct {
	Results []struct {
		Properties struct {
			City        string `json:"$city"`
			Region      string `json:"$region"`
			CountryCode string `json:"$country_code"`
			IsStudent   bool   `json:"$is_student"`
		} `json:"$properties"`
	} `json:"results"`
}

// DisabledClient se usa cuando no hay token configurado.
type DisabledClient struct{ Reason string }

func (d *DisabledClient) GetProperty(ctx context.Context, userID int64) (*domain.ExternalProperty, error) {
	return nil, nil
}

func (d *DisabledClient) SetProperties(ctx context.Context, userID int64, props map[string]string) error {
	return errors.New(d.Reason)
}
