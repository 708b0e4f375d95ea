package payload

import (
	"strings"

	"github.com/SergeiKhy/qrlink/internal/models"
)

var vcardEscaper = strings.NewReplacer(
	`\`, `\\`,
	`,`, `\,`,
	`;`, `\;`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

// BuildVCard собирает vCard 3.0 с CRLF переводами строк
func BuildVCard(c models.VCard) string {
	e := vcardEscaper.Replace

	lines := []string{"BEGIN:VCARD", "VERSION:3.0"}

	fullName := strings.TrimSpace(strings.Join([]string{c.Prefix, c.FirstName, c.LastName}, " "))
	lines = append(lines, "FN:"+e(strings.Join(strings.Fields(fullName), " ")))
	lines = append(lines, "N:"+e(c.LastName)+";"+e(c.FirstName)+";"+e(c.Prefix)+";;")

	if c.Organization != "" {
		lines = append(lines, "ORG:"+e(c.Organization))
	}
	if c.Title != "" {
		lines = append(lines, "TITLE:"+e(c.Title))
	}
	if c.Email != "" {
		lines = append(lines, "EMAIL:"+e(c.Email))
	}
	if c.Phone != "" {
		lines = append(lines, "TEL;TYPE=WORK:"+e(c.Phone))
	}
	if c.MobilePhone != "" {
		lines = append(lines, "TEL;TYPE=CELL:"+e(c.MobilePhone))
	}
	if c.Fax != "" {
		lines = append(lines, "TEL;TYPE=FAX:"+e(c.Fax))
	}
	if c.Street != "" || c.City != "" || c.Region != "" || c.Postcode != "" || c.Country != "" {
		adr := strings.Join([]string{"", "", e(c.Street), e(c.City), e(c.Region), e(c.Postcode), e(c.Country)}, ";")
		lines = append(lines, "ADR;TYPE=WORK:"+adr)
	}
	if c.Website != "" {
		lines = append(lines, "URL:"+c.Website)
	}

	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\r\n")
}

// VCardFilename имя файла вида First_Last.vcf без символов, ломающих заголовок
func VCardFilename(c models.VCard) string {
	clean := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch {
			case r < 0x20, r == 0x7f, r == '"', r == '\\', r == '/':
				return -1
			case r == ' ':
				return '_'
			}
			return r
		}, strings.TrimSpace(s))
	}
	return clean(c.FirstName) + "_" + clean(c.LastName) + ".vcf"
}
