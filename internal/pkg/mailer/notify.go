package mailer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/pkg/logger"
)

const TierChangedSubject = "Seu plano Pro Career Suite foi atualizado"

const TierChangedTemplate = `<p>Olá {{if .Name}}{{.Name}}{{else}}{{.Email}}{{end}},</p>
<p>Seu plano agora é <strong>{{.Tier}}</strong>.</p>
<p>As novas permissões valem a partir do próximo acesso ao painel.</p>`

type TierChanged struct {
	Name  string
	Email string
	Tier  string
}

const notifyTimeout = 30 * time.Second

// NotifyTierChanged envia o aviso de troca de plano em background. Sem
// mailer inicializado não faz nada.
func NotifyTierChanged(ctx context.Context, data TierChanged) {
	svc := Use()
	if svc == nil || data.Email == "" {
		return
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := svc.SendTemplate(sendCtx, data.Email, TierChangedSubject, TierChangedTemplate, data); err != nil {
			logger.Named("mailer").Warn(sendCtx, "falha ao enviar aviso de troca de tier",
				zap.String("email", data.Email), zap.Error(err))
		}
	}()
}
