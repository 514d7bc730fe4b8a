package mail

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/samber/oops"
)

//go:embed templates/*
var templateFS embed.FS

var (
	resetHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/password_reset.html"))
	resetText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/password_reset.txt"))
)

// ResetSubject is the subject of password reset mails.
const ResetSubject = "Reset your password"

type resetData struct {
	Name      string
	Link      string
	ExpiresIn string
}

func renderReset(data resetData) (text, html string, err error) {
	var tb, hb bytes.Buffer
	if err := resetText.Execute(&tb, data); err != nil {
		return "", "", oops.Code("MAIL_RENDER_FAILED").Wrap(err)
	}
	if err := resetHTML.Execute(&hb, data); err != nil {
		return "", "", oops.Code("MAIL_RENDER_FAILED").Wrap(err)
	}
	return tb.String(), hb.String(), nil
}
