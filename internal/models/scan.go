package models

import (
	"time"
)

// ScanEvent одно разрешение существующей ссылки. Только добавляется, не изменяется.
type ScanEvent struct {
	ID         int64     `json:"id"`
	EventID    string    `json:"event_id"`
	LinkID     int64     `json:"link_id"`
	Code       string    `json:"code"`
	IPAddress  string    `json:"ip_address"` // как пришёл, может быть цепочкой прокси
	UserAgent  string    `json:"user_agent"`
	DeviceType string    `json:"device_type"`
	OS         string    `json:"os"`
	Browser    string    `json:"browser,omitempty"`
	City       string    `json:"city,omitempty"`
	Country    string    `json:"country,omitempty"`
	ScannedAt  time.Time `json:"scanned_at"`
}
