// Package email envía las notificaciones transaccionales de la tienda:
// invitaciones de transferencia de garantía y avisos de cambio de dueño.
package email

import "context"

// Sender envía un mail multipart (texto + html).
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// NopSender descarta todos los mails. Se usa con email.enabled=false y
// en tests.
type NopSender struct{}

func (NopSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	return nil
}
