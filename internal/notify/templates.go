package notify

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"
)

// TaskEmail is the data behind every task lifecycle email.
type TaskEmail struct {
	Subject       string
	Message       string
	ReporterName  string
	ReporterEmail string
	Status        string
	TaskName      string
	Priority      string
	Description   string
	Comment       *CommentBlock
	LogoURL       string
}

type CommentBlock struct {
	Author  string
	Content string
}

const taskHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Subject}}</title>
<style>
body { font-family: Arial, sans-serif; background-color: #222; color: #eee; padding: 20px; }
h1 { color: #64a861; }
ul { list-style-type: none; padding: 0; }
li { margin-bottom: 10px; }
li strong { color: #64a861; }
.logo { display: block; margin: 20px auto; max-width: 200px; }
</style>
</head>
<body>
<h1>{{.Subject}}</h1>
<p>{{.Message}}</p>
<p><strong>Task details:</strong></p>
<ul>
<li><strong>Reporter:</strong> {{.ReporterName}} ({{.ReporterEmail}})</li>
<li><strong>Status:</strong> {{.Status}}</li>
<li><strong>Task:</strong> {{.TaskName}}</li>
<li><strong>Priority:</strong> {{.Priority}}</li>
<li><strong>Description:</strong> {{.Description}}</li>
{{- with .Comment}}
<li><strong>Comment by {{.Author}}:</strong> {{.Content}}</li>
{{- end}}
</ul>
{{- if .LogoURL}}
<img src="{{.LogoURL}}" alt="Logo" class="logo">
{{- end}}
</body>
</html>
`

const taskText = `{{.Message}}

Reporter: {{.ReporterName}} ({{.ReporterEmail}})
Status: {{.Status}}
Task: {{.TaskName}}
Priority: {{.Priority}}
Description: {{.Description}}
{{- with .Comment}}
Comment by {{.Author}}: {{.Content}}
{{- end}}
`

const invitationText = `You have been invited to join the team {{.TeamName}} on Kanban. Click the link below to accept the invitation:

{{.Link}}
`

const invitationHTML = `<p>You have been invited to join the team <strong>{{.TeamName}}</strong> on Kanban.</p>
<p><a href="{{.Link}}">Accept the invitation</a></p>
`

const tempPasswordText = `Your account has been created. Your temporary password is: {{.Password}}
`

var (
	taskHTMLTmpl       = htmltemplate.Must(htmltemplate.New("task").Parse(taskHTML))
	taskTextTmpl       = template.Must(template.New("task").Parse(taskText))
	invitationTextTmpl = template.Must(template.New("invitation").Parse(invitationText))
	invitationHTMLTmpl = htmltemplate.Must(htmltemplate.New("invitation").Parse(invitationHTML))
	tempPasswordTmpl   = template.Must(template.New("password").Parse(tempPasswordText))
)

// TaskMessage renders a task lifecycle email for the given recipients.
func TaskMessage(data TaskEmail, to []string) (Message, error) {
	var text, html bytes.Buffer
	if err := taskTextTmpl.Execute(&text, data); err != nil {
		return Message{}, err
	}
	if err := taskHTMLTmpl.Execute(&html, data); err != nil {
		return Message{}, err
	}
	return Message{Subject: data.Subject, Text: text.String(), HTML: html.String(), To: to}, nil
}

// InvitationMessage renders the team invitation carrying the accept link.
func InvitationMessage(teamName, link, to string) (Message, error) {
	data := struct{ TeamName, Link string }{teamName, link}
	var text, html bytes.Buffer
	if err := invitationTextTmpl.Execute(&text, data); err != nil {
		return Message{}, err
	}
	if err := invitationHTMLTmpl.Execute(&html, data); err != nil {
		return Message{}, err
	}
	return Message{
		Subject: "Invitation to join " + teamName + " on Kanban",
		Text:    text.String(),
		HTML:    html.String(),
		To:      []string{to},
	}, nil
}

// TemporaryPasswordMessage renders the mail sent to users created by an invitation.
func TemporaryPasswordMessage(password, to string) (Message, error) {
	var text bytes.Buffer
	if err := tempPasswordTmpl.Execute(&text, struct{ Password string }{password}); err != nil {
		return Message{}, err
	}
	return Message{
		Subject: "Your Temporary Password",
		Text:    text.String(),
		To:      []string{to},
	}, nil
}
