package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SergeiKhy/qrlink/internal/device"
	"github.com/SergeiKhy/qrlink/internal/geo"
	"github.com/SergeiKhy/qrlink/internal/metrics"
	"github.com/SergeiKhy/qrlink/internal/models"
	"github.com/SergeiKhy/qrlink/internal/payload"
	"github.com/SergeiKhy/qrlink/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultGeoTimeout = 800 * time.Millisecond
	fallbackIP        = "127.0.0.1"
)

var tracer = otel.Tracer("github.com/SergeiKhy/qrlink/internal/service")

// ResolveRequest то, что нужно диспетчеру от HTTP-запроса.
// ClientIP - сырое значение X-Forwarded-For или X-Real-IP, может быть пустым.
type ResolveRequest struct {
	Code      string
	ClientIP  string
	UserAgent string
}

// Dispatcher разрешает короткий код в ответ и фиксирует скан
type Dispatcher interface {
	Resolve(ctx context.Context, req ResolveRequest) (*payload.Response, error)
}

type DispatcherConfig struct {
	GeoTimeout time.Duration
}

type dispatcher struct {
	links    LinkService
	geo      geo.Resolver
	recorder ScanRecorder
	cfg      DispatcherConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewDispatcher создаёт диспетчер редиректов
func NewDispatcher(
	links LinkService,
	resolver geo.Resolver,
	recorder ScanRecorder,
	cfg DispatcherConfig,
	logger *zap.Logger,
) Dispatcher {
	if cfg.GeoTimeout <= 0 {
		cfg.GeoTimeout = defaultGeoTimeout
	}
	if resolver == nil {
		resolver = geo.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dispatcher{
		links:    links,
		geo:      resolver,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve ищет ссылку, записывает скан и строит ответ по типу ссылки.
// Неизвестный код возвращает repository.ErrLinkNotFound и скан не пишется.
// Скан пишется до декодирования payload, поэтому битая ссылка тоже считается.
func (d *dispatcher) Resolve(ctx context.Context, req ResolveRequest) (*payload.Response, error) {
	ctx, span := tracer.Start(ctx, "dispatcher.resolve")
	defer span.End()
	span.SetAttributes(attribute.String("qr.code", req.Code))

	start := time.Now()
	defer func() {
		metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	}()

	link, err := d.links.GetLink(ctx, req.Code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			metrics.Resolutions.WithLabelValues("", "not_found").Inc()
			return nil, err
		}
		metrics.Resolutions.WithLabelValues("", "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "link lookup failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("qr.type", string(link.Type)))

	// Геолокация параллельно с разбором User-Agent, но не дольше GeoTimeout
	lookupIP := firstIP(req.ClientIP)
	located := make(chan geo.Location, 1)
	geoCtx, cancel := context.WithTimeout(ctx, d.cfg.GeoTimeout)
	defer cancel()
	go func() {
		located <- d.geo.Resolve(geoCtx, lookupIP)
	}()

	client := device.Classify(req.UserAgent)

	var loc geo.Location
	select {
	case loc = <-located:
	case <-geoCtx.Done():
		d.logger.Debug("Геолокация не уложилась в таймаут", zap.String("ip", lookupIP))
	}

	d.record(ctx, link, req, client, loc)

	p, err := payload.Decode(link)
	if err != nil {
		d.fail(span, link, err)
		return nil, err
	}

	resp, err := payload.Render(p, client.OS)
	if err != nil {
		d.fail(span, link, err)
		return nil, err
	}

	metrics.Resolutions.WithLabelValues(string(link.Type), "ok").Inc()
	return resp, nil
}

// record отдаёт скан в пул записи. Ошибки только логируются.
func (d *dispatcher) record(ctx context.Context, link *models.Link, req ResolveRequest, client device.Client, loc geo.Location) {
	ip := strings.TrimSpace(req.ClientIP)
	if ip == "" {
		ip = fallbackIP
	}

	event := &models.ScanEvent{
		EventID:    uuid.NewString(),
		LinkID:     link.ID,
		Code:       link.Code,
		IPAddress:  ip,
		UserAgent:  req.UserAgent,
		DeviceType: client.DeviceType,
		OS:         client.OS,
		Browser:    client.Browser,
		City:       loc.City,
		Country:    loc.Country,
		ScannedAt:  d.now().UTC(),
	}

	// Отмена запроса не должна терять уже собранный скан
	if err := d.recorder.Record(context.WithoutCancel(ctx), event); err != nil {
		d.logger.Warn("Скан не поставлен в очередь",
			zap.String("code", link.Code),
			zap.Error(err),
		)
	}
}

func (d *dispatcher) fail(span trace.Span, link *models.Link, err error) {
	outcome := "error"
	if errors.Is(err, payload.ErrInvalidLinkType) {
		outcome = "invalid_type"
	}
	metrics.Resolutions.WithLabelValues(string(link.Type), outcome).Inc()

	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
	d.logger.Error("Не удалось построить ответ для ссылки",
		zap.String("code", link.Code),
		zap.String("type", string(link.Type)),
		zap.Error(err),
	)
}

// firstIP первый адрес из цепочки X-Forwarded-For
func firstIP(raw string) string {
	first, _, _ := strings.Cut(raw, ",")
	return strings.TrimSpace(first)
}
