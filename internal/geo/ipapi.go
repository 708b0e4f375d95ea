package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	ipAPIFields  = "status,message,country,city"
	maxBodyBytes = 16 << 10
)

// IPAPIResolver ходит в ip-api.com (или совместимый сервис). Без повторов.
type IPAPIResolver struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewIPAPIResolver(baseURL string, timeout time.Duration, logger *zap.Logger) *IPAPIResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IPAPIResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (r *IPAPIResolver) Resolve(ctx context.Context, ip string) Location {
	parsed, ok := lookupable(ip)
	if !ok {
		return Location{}
	}

	start := time.Now()
	loc, err := r.lookup(ctx, parsed.String())
	observe("ipapi", loc, err)
	if err != nil {
		r.logger.Debug("Geo lookup failed",
			zap.String("ip", ip),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return Location{}
	}
	return loc
}

func (r *IPAPIResolver) lookup(ctx context.Context, ip string) (Location, error) {
	endpoint := fmt.Sprintf("%s/json/%s?fields=%s", r.baseURL, url.PathEscape(ip), ipAPIFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Location{}, fmt.Errorf("failed to build geo request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geo provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Location{}, fmt.Errorf("failed to read geo response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return Location{}, fmt.Errorf("malformed geo response")
	}

	result := gjson.ParseBytes(body)
	if status := result.Get("status").String(); status != "success" {
		return Location{}, fmt.Errorf("geo provider status %q: %s", status, result.Get("message").String())
	}

	return Location{
		City:    result.Get("city").String(),
		Country: result.Get("country").String(),
	}, nil
}
