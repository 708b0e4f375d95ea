package payload

import (
	"fmt"
	"net/http"

	"github.com/SergeiKhy/qrlink/internal/device"
)

const (
	ContentTypeHTML  = "text/html; charset=utf-8"
	ContentTypeVCard = "text/vcard; charset=utf-8"
)

// Response транспортно-независимое описание ответа.
// Location непустой - это редирект, иначе отдаётся Body.
type Response struct {
	Status      int
	Location    string
	ContentType string
	Body        []byte
	Filename    string // для вложений
}

func (r *Response) IsRedirect() bool {
	return r.Location != ""
}

func redirect(target string) *Response {
	return &Response{Status: http.StatusMovedPermanently, Location: target}
}

func html(body []byte) *Response {
	return &Response{Status: http.StatusOK, ContentType: ContentTypeHTML, Body: body}
}

// Render строит ответ по варианту и ОС клиента (значения из пакета device)
func Render(p Payload, os string) (*Response, error) {
	switch v := p.(type) {
	case URL:
		return redirect(v.Destination), nil

	case PDF:
		return redirect(v.Destination), nil

	case VCard:
		return &Response{
			Status:      http.StatusOK,
			ContentType: ContentTypeVCard,
			Body:        []byte(BuildVCard(v.Card)),
			Filename:    VCardFilename(v.Card),
		}, nil

	case Message:
		body, err := messagePage(v.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to render message page: %w", err)
		}
		return html(body), nil

	case AppDownload:
		if os == device.OSIOS && v.IOSURL != "" {
			return redirect(v.IOSURL), nil
		}
		if os == device.OSAndroid && v.AndroidURL != "" {
			return redirect(v.AndroidURL), nil
		}
		body, err := landingPage(v)
		if err != nil {
			return nil, fmt.Errorf("failed to render landing page: %w", err)
		}
		return html(body), nil
	}

	return nil, ErrInvalidLinkType
}
