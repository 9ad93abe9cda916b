// Package mail renders and delivers the transactional emails of the auth
// service: verification codes, welcome notes and password notifications.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
)

// Template names one of the built in messages.
type Template string

const (
	TemplateVerifyEmail          Template = "verify_email_request"
	TemplateWelcome              Template = "welcome_message"
	TemplatePasswordReset        Template = "password_reset_email"
	TemplatePasswordResetSuccess Template = "password_reset_success"
	TemplatePasswordChanged      Template = "password_changed"
)

// Data is what the templates can reference. OTP is already zero padded.
type Data struct {
	Name string
	OTP  string
}

// Message is a queued, not yet rendered email.
type Message struct {
	To       string
	Template Template
	Data     Data
}

// Rendered is a message ready for a Sender.
type Rendered struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type definition struct {
	subject string
	html    string
	text    string
}

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
{{template "body" .}}
<p>The devnet team</p>
</body>
</html>{{end}}`

var definitions = map[Template]definition{
	TemplateVerifyEmail: {
		subject: "Verify your email",
		html: `{{define "body"}}<p>Use the code below to verify your email address. It expires in a few minutes.</p>
<p style="font-size: 24px; letter-spacing: 4px;"><strong>{{.OTP}}</strong></p>
<p>If you did not create an account you can ignore this message.</p>{{end}}`,
		text: "Use the code {{.OTP}} to verify your email address. It expires in a few minutes.",
	},
	TemplateWelcome: {
		subject: "Welcome to devnet",
		html:    `{{define "body"}}<p>Your email is verified and your account is ready. Welcome aboard.</p>{{end}}`,
		text:    "Your email is verified and your account is ready. Welcome aboard.",
	},
	TemplatePasswordReset: {
		subject: "Reset your password",
		html: `{{define "body"}}<p>We received a request to reset your password. Enter this code to continue:</p>
<p style="font-size: 24px; letter-spacing: 4px;"><strong>{{.OTP}}</strong></p>
<p>If you did not ask for a reset, no action is needed.</p>{{end}}`,
		text: "Enter the code {{.OTP}} to reset your password. If you did not ask for a reset, no action is needed.",
	},
	TemplatePasswordResetSuccess: {
		subject: "Password reset successful",
		html:    `{{define "body"}}<p>Your password has been reset and every device has been signed out. You can now log in with the new password.</p>{{end}}`,
		text:    "Your password has been reset and every device has been signed out.",
	},
	TemplatePasswordChanged: {
		subject: "Your password was changed",
		html:    `{{define "body"}}<p>The password on your account was just changed and other sessions were signed out. If this was not you, reset your password immediately.</p>{{end}}`,
		text:    "The password on your account was just changed. If this was not you, reset your password immediately.",
	},
}

type compiled struct {
	subject string
	html    *template.Template
	text    *texttemplate.Template
}

// Parsed once at init; a broken built in template is a programming error.
var registry = func() map[Template]compiled {
	out := make(map[Template]compiled, len(definitions))
	for name, def := range definitions {
		h := template.Must(template.New(string(name)).Parse(layout))
		template.Must(h.Parse(def.html))
		t := texttemplate.Must(texttemplate.New(string(name) + ".txt").Parse(def.text))
		out[name] = compiled{subject: def.subject, html: h, text: t}
	}
	return out
}()

// Render produces the subject and bodies for msg.
func Render(msg Message) (Rendered, error) {
	c, ok := registry[msg.Template]
	if !ok {
		return Rendered{}, fmt.Errorf("mail: unknown template %q", msg.Template)
	}
	if strings.TrimSpace(msg.To) == "" {
		return Rendered{}, fmt.Errorf("mail: %s: empty recipient", msg.Template)
	}

	var html, text bytes.Buffer
	if err := c.html.ExecuteTemplate(&html, "layout", msg.Data); err != nil {
		return Rendered{}, fmt.Errorf("mail: render %s: %w", msg.Template, err)
	}
	if err := c.text.Execute(&text, msg.Data); err != nil {
		return Rendered{}, fmt.Errorf("mail: render %s text: %w", msg.Template, err)
	}

	return Rendered{
		To:      msg.To,
		Subject: c.subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
