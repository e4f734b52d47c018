package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Client клиент справочника бизнесов и услуг
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента справочника
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetBusiness получает бизнес с расписанием, часовым поясом и буфером
func (c *Client) GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error) {
	url := fmt.Sprintf("%s/internal/businesses/%d", c.baseURL, businessID)

	var business Business
	if err := c.get(ctx, url, ErrBusinessNotFound, &business); err != nil {
		if err != ErrBusinessNotFound {
			c.log.Error("GetBusiness: business_id=%d, error=%v", businessID, err)
		}
		return nil, err
	}

	return business.ToDomain()
}

// GetService получает услугу бизнеса (длительность и цену)
func (c *Client) GetService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error) {
	url := fmt.Sprintf("%s/internal/businesses/%d/services/%d", c.baseURL, businessID, serviceID)

	var service Service
	if err := c.get(ctx, url, ErrServiceNotFound, &service); err != nil {
		if err != ErrServiceNotFound {
			c.log.Error("GetService: business_id=%d, service_id=%d, error=%v", businessID, serviceID, err)
		}
		return nil, err
	}

	// Услуга другого бизнеса для нас не существует
	if service.BusinessID != 0 && service.BusinessID != businessID {
		c.log.Warn("GetService: service_id=%d belongs to business_id=%d, requested business_id=%d",
			serviceID, service.BusinessID, businessID)
		return nil, ErrServiceNotFound
	}
	service.BusinessID = businessID

	return service.ToDomain(), nil
}

func (c *Client) get(ctx context.Context, url string, notFound error, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return fmt.Errorf("%w: invalid ID format", ErrInvalidResponse)
	case http.StatusNotFound:
		return notFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	// Парсим ответ
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return nil
}
