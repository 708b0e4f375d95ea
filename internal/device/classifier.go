// Package device определяет тип устройства и ОС клиента по User-Agent.
package device

import (
	"strings"

	ua "github.com/mileusna/useragent"
)

const (
	TypeMobile  = "mobile"
	TypeTablet  = "tablet"
	TypeDesktop = "desktop"

	OSWindows = "windows"
	OSMacOS   = "macos"
	OSLinux   = "linux"
	OSAndroid = "android"
	OSIOS     = "ios"
	OSUnknown = "unknown"
)

// Client производные метаданные клиента
type Client struct {
	DeviceType string
	OS         string
	Browser    string
}

// Порядок проверок значим: первое совпадение побеждает.
// "ipad" входит в mobile, поэтому планшетная ветка для iPad не срабатывает никогда.
var (
	mobileMarkers = []string{"mobile", "android", "iphone", "ipad", "phone"}
	tabletMarkers = []string{"tablet", "ipad"}

	osRules = []struct {
		os      string
		markers []string
	}{
		{OSWindows, []string{"windows"}},
		{OSMacOS, []string{"macintosh", "mac os x"}},
		{OSLinux, []string{"linux"}},
		{OSAndroid, []string{"android"}},
		{OSIOS, []string{"iphone", "ipad", "ipod"}},
	}
)

// Classify никогда не падает; на пустой или незнакомой строке возвращает desktop/unknown.
func Classify(userAgent string) Client {
	s := strings.ToLower(userAgent)

	client := Client{
		DeviceType: TypeDesktop,
		OS:         OSUnknown,
	}

	switch {
	case containsAny(s, mobileMarkers):
		client.DeviceType = TypeMobile
	case containsAny(s, tabletMarkers):
		client.DeviceType = TypeTablet
	}

	for _, rule := range osRules {
		if containsAny(s, rule.markers) {
			client.OS = rule.os
			break
		}
	}

	if userAgent != "" {
		client.Browser = ua.Parse(userAgent).Name
	}

	return client
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
