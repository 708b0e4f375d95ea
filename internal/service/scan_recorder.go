package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SergeiKhy/qrlink/internal/metrics"
	"github.com/SergeiKhy/qrlink/internal/models"
	"github.com/SergeiKhy/qrlink/internal/repository"
	"go.uber.org/zap"
)

// Константы worker pool
const (
	defaultWorkerCount   = 3    // Количество воркеров
	defaultChannelBuffer = 1000 // Размер буфера канала
	defaultMaxRetries    = 3    // Максимальное количество попыток записи
	writeTimeout         = 5 * time.Second
	retryBackoff         = 100 * time.Millisecond
)

var (
	ErrRecorderStopped = errors.New("scan recorder is stopped")
	ErrRecorderBusy    = errors.New("scan recorder buffer is full")
)

// ScanRecorder асинхронная запись событий сканирования
type ScanRecorder interface {
	Start()
	Stop(ctx context.Context) error
	Record(ctx context.Context, event *models.ScanEvent) error
	Stats() ChannelStats
}

// ScanRecorderConfig размеры пула
type ScanRecorderConfig struct {
	Workers    int
	Buffer     int
	MaxRetries int
}

// scanRecorder реализация через Worker Pool.
// Stop закрывает канал и дожидается, пока воркеры допишут всё, что уже принято.
type scanRecorder struct {
	scanRepo   repository.ScanRepository
	logger     *zap.Logger
	events     chan *models.ScanEvent
	workers    int
	maxRetries int
	wg         sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScanRecorder создаёт новый экземпляр пула записи сканов
func NewScanRecorder(scanRepo repository.ScanRepository, cfg ScanRecorderConfig, logger *zap.Logger) ScanRecorder {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkerCount
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultChannelBuffer
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &scanRecorder{
		scanRepo:   scanRepo,
		logger:     logger,
		events:     make(chan *models.ScanEvent, cfg.Buffer),
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start запускает worker pool. Повторный вызов ничего не делает.
func (r *scanRecorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return
	}
	r.started = true

	r.logger.Info("Запуск воркеров записи сканов", zap.Int("count", r.workers))

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

// Stop перестаёт принимать события и дренирует очередь.
// Если ctx истёк раньше, текущие записи прерываются, остаток очереди теряется.
func (r *scanRecorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	close(r.events)
	started := r.started
	r.mu.Unlock()

	if !started {
		r.cancel()
		return nil
	}

	r.logger.Info("Остановка записи сканов...", zap.Int("pending", len(r.events)))

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		r.logger.Info("Запись сканов остановлена")
		return nil
	case <-ctx.Done():
		r.cancel()
		<-done
		r.logger.Warn("Дренаж очереди сканов прерван", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

// Record ставит событие в очередь, не блокируя запрос
func (r *scanRecorder) Record(ctx context.Context, event *models.ScanEvent) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		metrics.ScanWrites.WithLabelValues("dropped").Inc()
		return ErrRecorderStopped
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r.events <- event:
		metrics.ScanQueueDepth.Inc()
		return nil
	default:
		// Канал заполнен: теряем статистику, но не задерживаем редирект
		metrics.ScanWrites.WithLabelValues("dropped").Inc()
		return ErrRecorderBusy
	}
}

// worker обрабатывает события из канала до его закрытия
func (r *scanRecorder) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("Воркер сканов запущен", zap.Int("id", id))

	for event := range r.events {
		metrics.ScanQueueDepth.Dec()
		if r.ctx.Err() != nil {
			metrics.ScanWrites.WithLabelValues("dropped").Inc()
			continue
		}
		r.process(event)
	}

	r.logger.Debug("Воркер сканов остановлен", zap.Int("id", id))
}

// process записывает одно событие с retry логикой.
// Повторы безопасны: event_id делает вставку идемпотентной.
func (r *scanRecorder) process(event *models.ScanEvent) {
	var err error
retry:
	for i := 0; i < r.maxRetries; i++ {
		ctx, cancel := context.WithTimeout(r.ctx, writeTimeout)
		err = r.scanRepo.Record(ctx, event)
		cancel()
		if err == nil {
			metrics.ScanWrites.WithLabelValues("recorded").Inc()
			return
		}

		if i < r.maxRetries-1 {
			r.logger.Debug("Повторная попытка записи скана",
				zap.String("code", event.Code),
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			select {
			case <-time.After(time.Duration(i+1) * retryBackoff):
			case <-r.ctx.Done():
				break retry
			}
		}
	}

	metrics.ScanWrites.WithLabelValues("failed").Inc()
	r.logger.Error("Не удалось записать скан после всех попыток",
		zap.String("code", event.Code),
		zap.String("event_id", event.EventID),
		zap.Error(err),
	)
}

// Stats возвращает статистику канала для мониторинга
func (r *scanRecorder) Stats() ChannelStats {
	return ChannelStats{
		BufferSize:  cap(r.events),
		BufferUsed:  len(r.events),
		WorkerCount: r.workers,
	}
}

// ChannelStats статистика канала worker pool
type ChannelStats struct {
	BufferSize  int `json:"buffer_size"`  // Общая ёмкость канала
	BufferUsed  int `json:"buffer_used"`  // Текущее использование
	WorkerCount int `json:"worker_count"` // Количество воркеров
}
