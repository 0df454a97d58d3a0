package notifyservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с сервисом уведомлений
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента сервиса уведомлений
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// SendEvent отправляет событие по записи в сервис уведомлений
func (c *Client) SendEvent(ctx context.Context, event AppointmentEvent) error {
	url := fmt.Sprintf("%s/internal/notifications/events", c.baseURL)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}
}

// SendEventWithGracefulDegradation отправляет событие с graceful degradation.
// Недоступность сервиса уведомлений никогда не должна ломать работу с записями:
// при любой ошибке возвращается ErrServiceDegraded, который вызывающая сторона
// логирует и игнорирует.
func (c *Client) SendEventWithGracefulDegradation(ctx context.Context, event AppointmentEvent) error {
	c.log.Info("Sending notification event=%s public_code=%s", event.Event, event.PublicCode)

	if err := c.SendEvent(ctx, event); err != nil {
		// Повышаем уровень логирования до ERROR, чтобы быстрее заметить проблему
		c.log.Error("NotifyService unavailable, applying graceful degradation for event=%s public_code=%s: %v",
			event.Event, event.PublicCode, err)
		return fmt.Errorf("%w: event=%s, error=%v", ErrServiceDegraded, event.Event, err)
	}

	c.log.Info("Successfully sent notification event=%s public_code=%s", event.Event, event.PublicCode)
	return nil
}
