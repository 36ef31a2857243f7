package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// TemplateWelcome is sent once after a successful registration.
const TemplateWelcome = "welcome"

var welcomeHTML = template.Must(template.New(TemplateWelcome).Parse(`
<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Welcome{{if .Name}}, {{.Name}}{{end}}!</h2>
  <p>Your account <strong>{{.Email}}</strong> has been created.</p>
  <p>You can now sign in and start using the service.</p>
</body>
</html>
`))

// Render resolves a template name into subject, text and HTML bodies.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case TemplateWelcome:
		var buf bytes.Buffer
		if err := welcomeHTML.Execute(&buf, data); err != nil {
			return "", "", "", err
		}
		text = fmt.Sprintf("Welcome! Your account %v has been created.", data["Email"])
		return "Welcome aboard", text, buf.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
}
