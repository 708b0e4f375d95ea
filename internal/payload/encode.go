package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/SergeiKhy/qrlink/internal/models"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Encoded то, что ложится в строку links
type Encoded struct {
	Type       models.LinkType
	Payload    string
	IOSURL     string
	AndroidURL string
}

type destination struct {
	URL string `validate:"required,http_url"`
}

// Encode проверяет обязательные поля по типу и сериализует payload.
// Ошибки валидации оборачивают ErrInvalidInput.
func Encode(in *models.CreateLinkInput) (*Encoded, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidInput)
	}

	switch in.Type {
	case models.LinkTypeURL, models.LinkTypePDF:
		dest := strings.TrimSpace(in.Destination)
		if dest == "" {
			return nil, invalid(ErrMissingDestination)
		}
		if err := validate.Struct(destination{URL: dest}); err != nil {
			return nil, invalid(fmt.Errorf("destination must be an http(s) URL"))
		}
		return &Encoded{Type: in.Type, Payload: dest}, nil

	case models.LinkTypeVCard:
		if in.VCard == nil || strings.TrimSpace(in.VCard.FirstName) == "" || strings.TrimSpace(in.VCard.LastName) == "" {
			return nil, invalid(ErrMissingName)
		}
		if err := validate.Struct(in.VCard); err != nil {
			return nil, invalid(describe(err))
		}
		data, err := json.Marshal(in.VCard)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal vcard: %w", err)
		}
		return &Encoded{Type: in.Type, Payload: string(data)}, nil

	case models.LinkTypeMessage:
		if strings.TrimSpace(in.MessageText) == "" {
			return nil, invalid(ErrMissingMessage)
		}
		return &Encoded{Type: in.Type, Payload: in.MessageText}, nil

	case models.LinkTypeAppDownload:
		if in.AppDownload == nil || (in.AppDownload.IOSURL == "" && in.AppDownload.AndroidURL == "") {
			return nil, invalid(ErrMissingStoreURL)
		}
		if err := validate.Struct(in.AppDownload); err != nil {
			return nil, invalid(describe(err))
		}
		data, err := json.Marshal(in.AppDownload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal app download: %w", err)
		}
		return &Encoded{
			Type:       in.Type,
			Payload:    string(data),
			IOSURL:     in.AppDownload.IOSURL,
			AndroidURL: in.AppDownload.AndroidURL,
		}, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrInvalidLinkType)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// describe превращает ошибки validator в короткое сообщение для клиента
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
}
