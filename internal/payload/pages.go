package payload

import (
	"bytes"
	"html/template"
	"strings"
)

var messageTmpl = template.Must(template.New("message").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>Message</title>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
      body { font-family: Arial, sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; }
      .message { background: #f5f5f5; padding: 20px; border-radius: 8px; }
    </style>
  </head>
  <body>
    <div class="message">
      <h2>Message</h2>
      <p>{{range $i, $line := .}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
    </div>
    <p><small>Scan your code to view this message</small></p>
  </body>
</html>`))

var landingTmpl = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>Download App</title>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
      body { font-family: Arial, sans-serif; max-width: 400px; margin: 50px auto; padding: 20px; text-align: center; }
      .store-button { display: inline-block; margin: 10px; padding: 12px 24px; background: #007AFF; color: white; text-decoration: none; border-radius: 8px; }
      .store-button:hover { background: #0056CC; }
    </style>
  </head>
  <body>
    <h2>Download Our App</h2>
    <p>Choose your platform:</p>
    {{with .IOSURL}}<a href="{{.}}" class="store-button">Download for iOS</a>{{end}}
    {{with .AndroidURL}}<a href="{{.}}" class="store-button">Download for Android</a>{{end}}
    <p><small>Scan your code to download</small></p>
  </body>
</html>`))

const notFoundPage = `<!DOCTYPE html>
<html>
  <head>
    <title>Link Not Found</title>
    <meta name="viewport" content="width=device-width, initial-scale=1">
  </head>
  <body style="font-family: Arial, sans-serif; text-align: center; padding: 50px;">
    <h1>404 - Link Not Found</h1>
    <p>The requested link could not be found.</p>
  </body>
</html>`

// NotFoundPage HTML для неизвестного кода
func NotFoundPage() []byte {
	return []byte(notFoundPage)
}

func messagePage(text string) ([]byte, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var buf bytes.Buffer
	if err := messageTmpl.Execute(&buf, strings.Split(text, "\n")); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func landingPage(app AppDownload) ([]byte, error) {
	var buf bytes.Buffer
	if err := landingTmpl.Execute(&buf, app); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
