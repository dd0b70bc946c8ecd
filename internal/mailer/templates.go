package mailer

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

var htmlTemplates = htmltemplate.Must(htmltemplate.New("").Parse(`
{{define "layout_start"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<div style="background-color: #13477B; padding: 2rem; text-align: center;"><h1 style="color: white; margin: 0;">{{.Band}}</h1></div>
<div style="padding: 2rem; background-color: #f9f9f9;">{{end}}
{{define "layout_end"}}<hr style="border: none; border-top: 1px solid #ddd; margin: 2rem 0;">
<p style="color: #666; font-size: 0.8rem; text-align: center;">This email was sent from the {{.Band}} band management system.</p>
</div></div>{{end}}

{{define "password_reset"}}{{template "layout_start" .}}
<h2 style="color: #13477B;">Password Reset Request</h2>
<p>Hi {{.Name}},</p>
<p>We received a request to reset your password for your {{.Band}} band member account.</p>
<p style="text-align: center; margin: 2rem 0;"><a href="{{.URL}}" style="background-color: #13477B; color: white; padding: 1rem 2rem; text-decoration: none; border-radius: 5px; font-weight: bold;">Reset Your Password</a></p>
<p style="color: #666; font-size: 0.9rem;">If the button doesn't work, copy and paste this link into your browser:<br><a href="{{.URL}}">{{.URL}}</a></p>
<p style="color: #666; font-size: 0.9rem;">This link will expire in 1 hour for security reasons.</p>
<p style="color: #666; font-size: 0.9rem;">If you didn't request this password reset, you can safely ignore this email.</p>
{{template "layout_end" .}}{{end}}

{{define "welcome"}}{{template "layout_start" .}}
<h2 style="color: #13477B;">Your Band Member Account is Ready</h2>
<p>Hi {{.Name}},</p>
<p>Your account has been created for the {{.Band}} band management system!</p>
<p><strong>Email:</strong> {{.Email}}<br><strong>Temporary Password:</strong> <code>{{.Password}}</code></p>
<p style="text-align: center; margin: 2rem 0;"><a href="{{.URL}}" style="background-color: #13477B; color: white; padding: 1rem 2rem; text-decoration: none; border-radius: 5px; font-weight: bold;">Login to Dashboard</a></p>
<p style="color: #dc3545; font-weight: bold;">Please change your password after your first login.</p>
{{template "layout_end" .}}{{end}}

{{define "campaign"}}{{.Content}}
<hr style="border: none; border-top: 1px solid #ddd; margin: 2rem 0;">
<p style="color: #666; font-size: 0.8rem; text-align: center;">You are receiving this because you subscribed to the {{.Band}} mailing list. <a href="{{.URL}}">Unsubscribe</a></p>{{end}}

{{define "contact"}}<h2>New contact form message</h2>
<p><strong>Name:</strong> {{.Name}}<br><strong>Email:</strong> {{.Email}}</p>
<p style="white-space: pre-wrap;">{{.Body}}</p>{{end}}
`))

var textTemplates = texttemplate.Must(texttemplate.New("").Parse(`
{{define "password_reset"}}Hi {{.Name}},

We received a request to reset your password for your {{.Band}} band member account.

Please open the following link to reset your password:
{{.URL}}

This link will expire in 1 hour for security reasons.

If you didn't request this password reset, you can safely ignore this email.

- {{.Band}}{{end}}

{{define "welcome"}}Hi {{.Name}},

Your account has been created for the {{.Band}} band management system.

Email: {{.Email}}
Temporary Password: {{.Password}}

Log in at {{.URL}} and change your password after your first login.

- {{.Band}}{{end}}

{{define "campaign"}}{{.Body}}

--
Unsubscribe: {{.URL}}{{end}}

{{define "contact"}}New contact form message

Name: {{.Name}}
Email: {{.Email}}

{{.Body}}{{end}}
`))

type templateData struct {
	Band     string
	Name     string
	Email    string
	Password string
	URL      string
	Body     string
	Content  htmltemplate.HTML
}

func render(name string, data templateData) (html, text string, err error) {
	var hb, tb bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&hb, name, data); err != nil {
		return "", "", err
	}
	if err := textTemplates.ExecuteTemplate(&tb, name, data); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(hb.String()), strings.TrimSpace(tb.String()), nil
}

// Composer builds the messages the API sends.
type Composer struct {
	band   string
	appURL string
}

// NewComposer creates a Composer. band is used in subjects and footers and
// appURL prefixes every link.
func NewComposer(band, appURL string) *Composer {
	return &Composer{band: band, appURL: strings.TrimRight(appURL, "/")}
}

// PasswordReset builds the reset email carrying token.
func (c *Composer) PasswordReset(to, name, token string) (Message, error) {
	url := c.appURL + "/reset-password?token=" + token
	html, text, err := render("password_reset", templateData{Band: c.band, Name: name, URL: url})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Reset Your " + c.band + " Password", HTML: html, Text: text}, nil
}

// Welcome builds the email sent to an account created by an admin.
func (c *Composer) Welcome(to, name, password string) (Message, error) {
	html, text, err := render("welcome", templateData{
		Band: c.band, Name: name, Email: to, Password: password, URL: c.appURL + "/login",
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Welcome to " + c.band + " Band Dashboard", HTML: html, Text: text}, nil
}

// Campaign builds one recipient's copy of a campaign. content is trusted
// admin-authored HTML; plainText falls back to a notice when empty.
func (c *Composer) Campaign(to, subject, content, plainText, unsubscribeToken string) (Message, error) {
	url := c.UnsubscribeURL(unsubscribeToken)
	if plainText == "" {
		plainText = "This message is best viewed in an HTML-capable email client."
	}
	html, text, err := render("campaign", templateData{
		Band: c.band, URL: url, Body: plainText, Content: htmltemplate.HTML(content),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, HTML: html, Text: text, UnsubscribeURL: url}, nil
}

// Contact builds the message forwarded from the public contact form.
func (c *Composer) Contact(to, name, email, body string) (Message, error) {
	html, text, err := render("contact", templateData{Band: c.band, Name: name, Email: email, Body: body})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		ReplyTo: email,
		Subject: "Contact form: message from " + name,
		HTML:    html,
		Text:    text,
	}, nil
}

// UnsubscribeURL returns the public unsubscribe link for token.
func (c *Composer) UnsubscribeURL(token string) string {
	return c.appURL + "/unsubscribe?token=" + token
}
