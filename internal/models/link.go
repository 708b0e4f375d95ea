package models

import (
	"time"
)

// LinkType определяет, как интерпретируется Payload ссылки
type LinkType string

const (
	LinkTypeURL         LinkType = "URL"
	LinkTypePDF         LinkType = "PDF"
	LinkTypeVCard       LinkType = "VCARD"
	LinkTypeMessage     LinkType = "MESSAGE"
	LinkTypeAppDownload LinkType = "APP_DOWNLOAD"
)

// IsValid сообщает, известен ли тип
func (t LinkType) IsValid() bool {
	switch t {
	case LinkTypeURL, LinkTypePDF, LinkTypeVCard, LinkTypeMessage, LinkTypeAppDownload:
		return true
	}
	return false
}

type Link struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	Type       LinkType  `json:"type"`
	Payload    string    `json:"payload"`
	IOSURL     string    `json:"ios_url,omitempty"`
	AndroidURL string    `json:"android_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// VCard контактная карточка, хранится в payload как JSON
type VCard struct {
	Prefix       string `json:"prefix,omitempty"`
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	Organization string `json:"organization,omitempty"`
	Title        string `json:"title,omitempty"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string `json:"phone,omitempty"`
	MobilePhone  string `json:"mobilePhone,omitempty"`
	Fax          string `json:"fax,omitempty"`
	Street       string `json:"street,omitempty"`
	City         string `json:"city,omitempty"`
	Region       string `json:"region,omitempty"`
	Postcode     string `json:"postcode,omitempty"`
	Country      string `json:"country,omitempty"`
	Website      string `json:"website,omitempty"`
}

// AppDownload пара ссылок на магазины приложений
type AppDownload struct {
	IOSURL     string `json:"iosUrl,omitempty" validate:"omitempty,http_url"`
	AndroidURL string `json:"androidUrl,omitempty" validate:"omitempty,http_url"`
}

type CreateLinkInput struct {
	Type        LinkType     `json:"type"`
	Destination string       `json:"destination,omitempty"`
	VCard       *VCard       `json:"vcard,omitempty"`
	MessageText string       `json:"messageText,omitempty"`
	AppDownload *AppDownload `json:"appDownload,omitempty"`
}

// CreatedLink результат создания ссылки вместе с QR-кодом
type CreatedLink struct {
	Link     *Link
	ShortURL string
	QRCode   string // data:image/png;base64,...
}
