package payload_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/SergeiKhy/qrlink/internal/device"
	"github.com/SergeiKhy/qrlink/internal/models"
	"github.com/SergeiKhy/qrlink/internal/payload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   *models.CreateLinkInput
		wantErr error
	}{
		{"url without destination", &models.CreateLinkInput{Type: models.LinkTypeURL}, payload.ErrMissingDestination},
		{"pdf without destination", &models.CreateLinkInput{Type: models.LinkTypePDF, Destination: "  "}, payload.ErrMissingDestination},
		{"url with bad scheme", &models.CreateLinkInput{Type: models.LinkTypeURL, Destination: "javascript:alert(1)"}, payload.ErrInvalidInput},
		{"vcard without card", &models.CreateLinkInput{Type: models.LinkTypeVCard}, payload.ErrMissingName},
		{"vcard without last name", &models.CreateLinkInput{Type: models.LinkTypeVCard, VCard: &models.VCard{FirstName: "Jane"}}, payload.ErrMissingName},
		{"vcard with bad email", &models.CreateLinkInput{Type: models.LinkTypeVCard, VCard: &models.VCard{FirstName: "Jane", LastName: "Doe", Email: "nope"}}, payload.ErrInvalidInput},
		{"empty message", &models.CreateLinkInput{Type: models.LinkTypeMessage}, payload.ErrMissingMessage},
		{"app download without urls", &models.CreateLinkInput{Type: models.LinkTypeAppDownload, AppDownload: &models.AppDownload{}}, payload.ErrMissingStoreURL},
		{"unknown type", &models.CreateLinkInput{Type: "FAX"}, payload.ErrInvalidLinkType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := payload.Encode(tt.input)
			require.Error(t, err)
			assert.Nil(t, enc)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, payload.ErrInvalidInput)
		})
	}
}

func TestEncodeDecode_AllTypes(t *testing.T) {
	inputs := []*models.CreateLinkInput{
		{Type: models.LinkTypeURL, Destination: "https://example.com/a?b=c"},
		{Type: models.LinkTypePDF, Destination: "https://cdn.example.com/menu.pdf"},
		{Type: models.LinkTypeVCard, VCard: &models.VCard{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}},
		{Type: models.LinkTypeMessage, MessageText: "hello\nworld"},
		{Type: models.LinkTypeAppDownload, AppDownload: &models.AppDownload{IOSURL: "https://apps.apple.com/app/id1"}},
	}

	for _, in := range inputs {
		t.Run(string(in.Type), func(t *testing.T) {
			enc, err := payload.Encode(in)
			require.NoError(t, err)

			p, err := payload.Decode(&models.Link{Type: enc.Type, Payload: enc.Payload, IOSURL: enc.IOSURL, AndroidURL: enc.AndroidURL})
			require.NoError(t, err)
			assert.Equal(t, in.Type, p.Type())
		})
	}
}

func TestEncode_RawPayloads(t *testing.T) {
	enc, err := payload.Encode(&models.CreateLinkInput{Type: models.LinkTypeMessage, MessageText: "  keep me  "})
	require.NoError(t, err)
	assert.Equal(t, "  keep me  ", enc.Payload)

	enc, err = payload.Encode(&models.CreateLinkInput{
		Type:        models.LinkTypeAppDownload,
		AppDownload: &models.AppDownload{AndroidURL: "https://play.google.com/store/apps/details?id=x"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"androidUrl":"https://play.google.com/store/apps/details?id=x"}`, enc.Payload)
	assert.Empty(t, enc.IOSURL)
	assert.Equal(t, "https://play.google.com/store/apps/details?id=x", enc.AndroidURL)
}

func TestDecode_InvalidType(t *testing.T) {
	_, err := payload.Decode(&models.Link{Type: "HOLOGRAM", Payload: "x"})
	assert.ErrorIs(t, err, payload.ErrInvalidLinkType)
}

func TestDecode_CorruptVCard(t *testing.T) {
	_, err := payload.Decode(&models.Link{Type: models.LinkTypeVCard, Payload: "{not json"})
	assert.ErrorIs(t, err, payload.ErrCorruptPayload)
	assert.False(t, errors.Is(err, payload.ErrInvalidLinkType))
}

func TestDecode_AppDownloadDedicatedFieldsWin(t *testing.T) {
	link := &models.Link{
		Type:    models.LinkTypeAppDownload,
		Payload: `{"iosUrl":"https://old.example.com/ios","androidUrl":"https://old.example.com/android"}`,
		IOSURL:  "https://apps.apple.com/app/id2",
	}

	p, err := payload.Decode(link)
	require.NoError(t, err)

	app := p.(payload.AppDownload)
	assert.Equal(t, "https://apps.apple.com/app/id2", app.IOSURL)
	assert.Equal(t, "https://old.example.com/android", app.AndroidURL)
}

func TestDecode_AppDownloadFieldsWithBrokenPayload(t *testing.T) {
	p, err := payload.Decode(&models.Link{Type: models.LinkTypeAppDownload, Payload: "", AndroidURL: "https://play.example.com"})
	require.NoError(t, err)
	assert.Equal(t, payload.AppDownload{AndroidURL: "https://play.example.com"}, p)
}

func TestRender_URLAndPDFRedirect(t *testing.T) {
	for _, p := range []payload.Payload{
		payload.URL{Destination: "https://example.com/x"},
		payload.PDF{Destination: "https://example.com/x"},
	} {
		resp, err := payload.Render(p, device.OSUnknown)
		require.NoError(t, err)
		assert.True(t, resp.IsRedirect())
		assert.Equal(t, http.StatusMovedPermanently, resp.Status)
		assert.Equal(t, "https://example.com/x", resp.Location)
	}
}

func TestRender_VCard(t *testing.T) {
	resp, err := payload.Render(payload.VCard{Card: models.VCard{FirstName: "Jane", LastName: "Doe"}}, device.OSIOS)
	require.NoError(t, err)

	body := string(resp.Body)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, payload.ContentTypeVCard, resp.ContentType)
	assert.Equal(t, "Jane_Doe.vcf", resp.Filename)
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCARD\r\nVERSION:3.0\r\n"))
	assert.True(t, strings.HasSuffix(body, "\r\nEND:VCARD"))
	assert.Contains(t, body, "\r\nFN:Jane Doe\r\n")
	assert.Contains(t, body, "\r\nN:Doe;Jane;;;\r\n")
}

func TestBuildVCard_OptionalFieldsAndEscaping(t *testing.T) {
	card := models.VCard{
		Prefix:       "Dr.",
		FirstName:    "Jane",
		LastName:     "Doe",
		Organization: "Acme, Inc; Labs",
		Phone:        "+1 555 0100",
		MobilePhone:  "+1 555 0101",
		City:         "Springfield",
		Website:      "https://jane.example.com",
	}

	vcard := payload.BuildVCard(card)

	assert.Contains(t, vcard, "FN:Dr. Jane Doe")
	assert.Contains(t, vcard, "N:Doe;Jane;Dr.;;")
	assert.Contains(t, vcard, `ORG:Acme\, Inc\; Labs`)
	assert.Contains(t, vcard, "TEL;TYPE=WORK:+1 555 0100")
	assert.Contains(t, vcard, "TEL;TYPE=CELL:+1 555 0101")
	assert.Contains(t, vcard, "ADR;TYPE=WORK:;;;Springfield;;;")
	assert.Contains(t, vcard, "URL:https://jane.example.com")
	assert.NotContains(t, vcard, "EMAIL:")
}

func TestVCardFilename_StripsHeaderBreakers(t *testing.T) {
	name := payload.VCardFilename(models.VCard{FirstName: "Ja\"ne\r\n", LastName: "Mary Doe"})
	assert.Equal(t, "Jane_Mary_Doe.vcf", name)
}

func TestRender_MessageEscapesAndBreaksLines(t *testing.T) {
	resp, err := payload.Render(payload.Message{Text: "line one\n<script>alert(1)</script>"}, device.OSUnknown)
	require.NoError(t, err)

	body := string(resp.Body)
	assert.Equal(t, payload.ContentTypeHTML, resp.ContentType)
	assert.Contains(t, body, "line one<br>&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, body, "<script>")
}

func TestRender_AppDownload(t *testing.T) {
	both := payload.AppDownload{IOSURL: "https://apps.apple.com/app/id1", AndroidURL: "https://play.google.com/store/apps/details?id=x"}

	t.Run("ios redirect", func(t *testing.T) {
		resp, err := payload.Render(both, device.OSIOS)
		require.NoError(t, err)
		assert.Equal(t, both.IOSURL, resp.Location)
	})

	t.Run("android redirect", func(t *testing.T) {
		resp, err := payload.Render(both, device.OSAndroid)
		require.NoError(t, err)
		assert.Equal(t, both.AndroidURL, resp.Location)
	})

	t.Run("desktop gets landing page", func(t *testing.T) {
		resp, err := payload.Render(both, device.OSWindows)
		require.NoError(t, err)
		assert.False(t, resp.IsRedirect())
		assert.Contains(t, string(resp.Body), "Download for iOS")
		assert.Contains(t, string(resp.Body), "Download for Android")
	})

	t.Run("ios without ios url gets landing page", func(t *testing.T) {
		resp, err := payload.Render(payload.AppDownload{AndroidURL: both.AndroidURL}, device.OSIOS)
		require.NoError(t, err)
		assert.False(t, resp.IsRedirect())
		assert.Equal(t, payload.ContentTypeHTML, resp.ContentType)
		assert.NotContains(t, string(resp.Body), "Download for iOS")
		assert.Contains(t, string(resp.Body), "Download for Android")
	})
}

func TestRender_NilPayload(t *testing.T) {
	_, err := payload.Render(nil, device.OSUnknown)
	assert.ErrorIs(t, err, payload.ErrInvalidLinkType)
}
