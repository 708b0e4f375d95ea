// Package payload кодирует пять вариантов содержимого ссылки в хранимую строку
// и обратно, а также рендерит ответ для каждого варианта.
package payload

import (
	"errors"

	"github.com/SergeiKhy/qrlink/internal/models"
)

var (
	ErrInvalidLinkType = errors.New("invalid link type")
	ErrCorruptPayload  = errors.New("corrupt payload")

	ErrInvalidInput       = errors.New("invalid link input")
	ErrMissingDestination = errors.New("destination URL is required")
	ErrMissingName        = errors.New("first name and last name are required for vCard")
	ErrMissingMessage     = errors.New("message text is required")
	ErrMissingStoreURL    = errors.New("at least one app store URL is required")
)

// Payload закрытая сумма типов: URL, PDF, VCard, Message, AppDownload
type Payload interface {
	Type() models.LinkType
	sealed()
}

type URL struct {
	Destination string
}

type PDF struct {
	Destination string
}

type VCard struct {
	Card models.VCard
}

type Message struct {
	Text string
}

type AppDownload struct {
	IOSURL     string
	AndroidURL string
}

func (URL) Type() models.LinkType         { return models.LinkTypeURL }
func (PDF) Type() models.LinkType         { return models.LinkTypePDF }
func (VCard) Type() models.LinkType       { return models.LinkTypeVCard }
func (Message) Type() models.LinkType     { return models.LinkTypeMessage }
func (AppDownload) Type() models.LinkType { return models.LinkTypeAppDownload }

func (URL) sealed()         {}
func (PDF) sealed()         {}
func (VCard) sealed()       {}
func (Message) sealed()     {}
func (AppDownload) sealed() {}
