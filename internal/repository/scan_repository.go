package repository

import (
	"context"
	"fmt"

	"github.com/SergeiKhy/qrlink/internal/models"
)

// ScanRepository только добавляет сканы; обновления и удаления нет
type ScanRepository interface {
	Record(ctx context.Context, scan *models.ScanEvent) error
}

type scanRepository struct {
	db *PostgresDB
}

func NewScanRepository(db *PostgresDB) ScanRepository {
	return &scanRepository{db: db}
}

// Record идемпотентен по event_id: повторная попытка после таймаута не создаст дубль
func (r *scanRepository) Record(ctx context.Context, scan *models.ScanEvent) error {
	query := `
		INSERT INTO scans (event_id, link_id, ip_address, user_agent, device_type, os, browser, city, country, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := r.db.Pool.Exec(ctx, query,
		scan.EventID,
		scan.LinkID,
		scan.IPAddress,
		scan.UserAgent,
		scan.DeviceType,
		scan.OS,
		nullable(scan.Browser),
		nullable(scan.City),
		nullable(scan.Country),
		scan.ScannedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record scan: %w", err)
	}

	return nil
}
