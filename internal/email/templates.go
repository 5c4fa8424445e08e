package email

import (
	"bytes"
	"embed"
	"html/template"
	texttpl "text/template"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

type Templates struct {
	InviteHTML    *template.Template
	InviteTXT     *texttpl.Template
	CompletedHTML *template.Template
	CompletedTXT  *texttpl.Template
}

// TransferInviteVars alimenta el mail que recibe el destinatario de una
// transferencia pendiente.
type TransferInviteVars struct {
	FromName    string
	ProductName string
	Code        string
	ExpiresAt   string
	AcceptURL   string
}

// TransferCompletedVars alimenta el aviso al dueño anterior.
type TransferCompletedVars struct {
	ProductName string
	ToEmail     string
	CompletedAt string
}

// LoadTemplates parsea los templates embebidos. Falla sólo ante un
// template roto, así que se llama una vez en el arranque.
func LoadTemplates() (*Templates, error) {
	read := func(name string) string {
		b, _ := templateFS.ReadFile("templates/" + name)
		return string(b)
	}

	ih, err := template.New("invite_html").Parse(read("transfer_invite.html"))
	if err != nil {
		return nil, err
	}
	it, err := texttpl.New("invite_txt").Parse(read("transfer_invite.txt"))
	if err != nil {
		return nil, err
	}
	ch, err := template.New("completed_html").Parse(read("transfer_completed.html"))
	if err != nil {
		return nil, err
	}
	ct, err := texttpl.New("completed_txt").Parse(read("transfer_completed.txt"))
	if err != nil {
		return nil, err
	}

	return &Templates{InviteHTML: ih, InviteTXT: it, CompletedHTML: ch, CompletedTXT: ct}, nil
}

// RenderInvite produce los cuerpos html y texto del mail de invitación.
func (t *Templates) RenderInvite(v TransferInviteVars) (htmlBody, textBody string, err error) {
	var hb, tb bytes.Buffer
	if err := t.InviteHTML.Execute(&hb, v); err != nil {
		return "", "", err
	}
	if err := t.InviteTXT.Execute(&tb, v); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

// RenderCompleted produce los cuerpos del aviso al dueño anterior.
func (t *Templates) RenderCompleted(v TransferCompletedVars) (htmlBody, textBody string, err error) {
	var hb, tb bytes.Buffer
	if err := t.CompletedHTML.Execute(&hb, v); err != nil {
		return "", "", err
	}
	if err := t.CompletedTXT.Execute(&tb, v); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
