package mailer

import "context"

type Service interface {
	SendRaw(ctx context.Context, to, subject, body string) error
	SendTemplate(ctx context.Context, to, subject, tpl string, data any) error
}
