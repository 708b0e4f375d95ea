package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/SergeiKhy/qrlink/internal/models"
	"github.com/SergeiKhy/qrlink/internal/payload"
	"github.com/SergeiKhy/qrlink/internal/qrcode"
	"github.com/SergeiKhy/qrlink/internal/repository"
	"go.uber.org/zap"
)

// Ошибки сервиса
var (
	ErrCodeExhausted = errors.New("failed to generate unique code")
)

// Константы сервиса
const (
	defaultCacheTTL = 24 * time.Hour
	codeLength      = 8
	maxCodeAttempts = 10
	charset         = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// LinkService интерфейс сервиса ссылок
type LinkService interface {
	CreateLink(ctx context.Context, input *models.CreateLinkInput) (*models.CreatedLink, error)
	GetLink(ctx context.Context, code string) (*models.Link, error)
	DeleteLink(ctx context.Context, code string) error
	ShortURL(code string) string
}

// LinkServiceConfig параметры сервиса ссылок
type LinkServiceConfig struct {
	BaseURL  string
	CacheTTL time.Duration
	QRSize   int
}

type linkService struct {
	linkRepo  repository.LinkRepository
	cacheRepo repository.CacheRepository
	cfg       LinkServiceConfig
	logger    *zap.Logger
}

// NewLinkService создаёт новый экземпляр сервиса
func NewLinkService(
	linkRepo repository.LinkRepository,
	cacheRepo repository.CacheRepository,
	cfg LinkServiceConfig,
	logger *zap.Logger,
) LinkService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &linkService{
		linkRepo:  linkRepo,
		cacheRepo: cacheRepo,
		cfg:       cfg,
		logger:    logger,
	}
}

// CreateLink валидирует ввод, подбирает уникальный код и рендерит QR
func (s *linkService) CreateLink(ctx context.Context, input *models.CreateLinkInput) (*models.CreatedLink, error) {
	encoded, err := payload.Encode(input)
	if err != nil {
		return nil, err
	}

	link := &models.Link{
		Type:       encoded.Type,
		Payload:    encoded.Payload,
		IOSURL:     encoded.IOSURL,
		AndroidURL: encoded.AndroidURL,
	}

	// Подбор кода: коллизия - пробуем заново, не больше maxCodeAttempts раз
	created := false
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate code: %w", err)
		}
		link.Code = code

		err = s.linkRepo.Create(ctx, link)
		if err == nil {
			created = true
			break
		}
		if !errors.Is(err, repository.ErrCodeExists) {
			return nil, err
		}
		s.logger.Debug("Коллизия короткого кода", zap.String("code", code), zap.Int("attempt", attempt+1))
	}
	if !created {
		return nil, ErrCodeExhausted
	}

	// Кэширование
	if err := s.cacheRepo.Set(ctx, link, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("Не удалось закэшировать ссылку", zap.String("code", link.Code), zap.Error(err))
	}

	shortURL := s.ShortURL(link.Code)
	qr, err := qrcode.DataURI(shortURL, s.cfg.QRSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}

	return &models.CreatedLink{
		Link:     link,
		ShortURL: shortURL,
		QRCode:   qr,
	}, nil
}

// GetLink получает ссылку по коду (сначала из кэша, затем из БД).
// Ошибка кэша не фатальна: идём в БД.
func (s *linkService) GetLink(ctx context.Context, code string) (*models.Link, error) {
	link, err := s.cacheRepo.Get(ctx, code)
	if err == nil {
		return link, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		s.logger.Warn("Ошибка чтения кэша ссылок", zap.String("code", code), zap.Error(err))
	}

	link, err = s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.Set(ctx, link, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("Не удалось закэшировать ссылку", zap.String("code", code), zap.Error(err))
	}

	return link, nil
}

// DeleteLink удаляет ссылку по коду
func (s *linkService) DeleteLink(ctx context.Context, code string) error {
	if err := s.cacheRepo.Delete(ctx, code); err != nil {
		s.logger.Warn("Не удалось удалить ссылку из кэша", zap.String("code", code), zap.Error(err))
	}

	return s.linkRepo.Delete(ctx, code)
}

// ShortURL публичный адрес редиректа для кода
func (s *linkService) ShortURL(code string) string {
	return s.cfg.BaseURL + "/r/" + code
}

// generateCode генерирует случайный код длиной codeLength
func generateCode() (string, error) {
	result := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[num.Int64()]
	}
	return string(result), nil
}
