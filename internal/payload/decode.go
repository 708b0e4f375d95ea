package payload

import (
	"encoding/json"
	"fmt"

	"github.com/SergeiKhy/qrlink/internal/models"
)

// Decode превращает хранимую строку в вариант по тегу типа.
// Для APP_DOWNLOAD выделенные колонки ссылки главнее полей из payload.
func Decode(link *models.Link) (Payload, error) {
	switch link.Type {
	case models.LinkTypeURL:
		return URL{Destination: link.Payload}, nil

	case models.LinkTypePDF:
		return PDF{Destination: link.Payload}, nil

	case models.LinkTypeVCard:
		var card models.VCard
		if err := json.Unmarshal([]byte(link.Payload), &card); err != nil {
			return nil, fmt.Errorf("%w: vcard: %w", ErrCorruptPayload, err)
		}
		return VCard{Card: card}, nil

	case models.LinkTypeMessage:
		return Message{Text: link.Payload}, nil

	case models.LinkTypeAppDownload:
		app := AppDownload{IOSURL: link.IOSURL, AndroidURL: link.AndroidURL}
		if app.IOSURL != "" && app.AndroidURL != "" {
			return app, nil
		}
		var stored models.AppDownload
		if err := json.Unmarshal([]byte(link.Payload), &stored); err != nil {
			if app.IOSURL != "" || app.AndroidURL != "" {
				return app, nil
			}
			return nil, fmt.Errorf("%w: app download: %w", ErrCorruptPayload, err)
		}
		if app.IOSURL == "" {
			app.IOSURL = stored.IOSURL
		}
		if app.AndroidURL == "" {
			app.AndroidURL = stored.AndroidURL
		}
		return app, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidLinkType, link.Type)
}
