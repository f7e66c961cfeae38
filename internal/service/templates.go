package service

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Freeeeeet/streamer_booking/internal/model"
)

// TemplateData поля, доступные в шаблонах уведомлений.
// Все значения уже отформатированы; незаполненное поле выводится пустой строкой.
type TemplateData struct {
	ClientName    string
	ProviderName  string
	Schedule      string
	NewSchedule   string
	Platform      string
	Price         string
	Refund        string
	RefundPercent string
	Reason        string
	SenderName    string
	Preview       string
	Link          string
}

// templateFor возвращает шаблон для пары (тип, роль получателя).
// Новый тип уведомления обязан получить здесь оба текста.
func templateFor(t model.NotificationType, role model.RecipientRole) (string, error) {
	forClient := role == model.RoleClient

	switch t {
	case model.NotificationBookingRequest:
		if forClient {
			return "Permintaan booking live dengan {{.ProviderName}} pada {{.Schedule}} telah dibuat. Silakan selesaikan pembayaran {{.Price}}.", nil
		}
		return "Permintaan booking baru dari {{.ClientName}} untuk {{.Schedule}} di {{.Platform}}.{{if .Link}} {{.Link}}{{end}}", nil

	case model.NotificationBookingPayment:
		if forClient {
			return "Pembayaran {{.Price}} untuk live bersama {{.ProviderName}} pada {{.Schedule}} berhasil.", nil
		}
		return "{{.ClientName}} telah membayar {{.Price}} untuk live pada {{.Schedule}}. Mohon konfirmasi booking.{{if .Link}} {{.Link}}{{end}}", nil

	case model.NotificationBookingAccepted:
		if forClient {
			return "{{.ProviderName}} menerima booking kamu untuk {{.Schedule}} di {{.Platform}}.", nil
		}
		return "Kamu menerima booking {{.ClientName}} untuk {{.Schedule}}.", nil

	case model.NotificationBookingRejected:
		if forClient {
			return "{{.ProviderName}} menolak booking kamu untuk {{.Schedule}}. Alasan: {{.Reason}}", nil
		}
		return "Kamu menolak booking {{.ClientName}} untuk {{.Schedule}}.", nil

	case model.NotificationBookingCancelled:
		if forClient {
			return "Booking live bersama {{.ProviderName}} pada {{.Schedule}} dibatalkan. Alasan: {{.Reason}}. Refund {{.RefundPercent}}% ({{.Refund}}).", nil
		}
		return "Booking {{.ClientName}} pada {{.Schedule}} dibatalkan. Alasan: {{.Reason}}", nil

	case model.NotificationBookingRescheduleRequested:
		if forClient {
			return "Permintaan jadwal ulang booking bersama {{.ProviderName}} ke {{.NewSchedule}} telah dikirim. Alasan: {{.Reason}}", nil
		}
		return "{{.ClientName}} meminta jadwal ulang dari {{.Schedule}} ke {{.NewSchedule}}. Alasan: {{.Reason}}", nil

	case model.NotificationBookingRescheduled:
		if forClient {
			return "Jadwal live bersama {{.ProviderName}} dipindahkan ke {{.NewSchedule}}.", nil
		}
		return "Jadwal live {{.ClientName}} dipindahkan ke {{.NewSchedule}}.", nil

	case model.NotificationBookingCompleted:
		if forClient {
			return "Live bersama {{.ProviderName}} pada {{.Schedule}} telah selesai. Terima kasih!", nil
		}
		return "Live dengan {{.ClientName}} pada {{.Schedule}} telah selesai.", nil

	case model.NotificationItemsReceived:
		if forClient {
			return "{{.ProviderName}} sudah menerima produk untuk live pada {{.Schedule}}.", nil
		}
		return "Kamu menandai produk dari {{.ClientName}} untuk live pada {{.Schedule}} sudah diterima.", nil

	case model.NotificationPaymentFailed:
		if forClient {
			return "Pembayaran {{.Price}} untuk live bersama {{.ProviderName}} gagal. Silakan coba lagi.", nil
		}
		return "Pembayaran dari {{.ClientName}} untuk live pada {{.Schedule}} gagal.", nil

	case model.NotificationNewMessage:
		if forClient {
			return "Pesan baru dari {{.SenderName}}: {{.Preview}}", nil
		}
		return "Pesan baru dari {{.SenderName}}: {{.Preview}}", nil

	default:
		return "", fmt.Errorf("no template for notification type %q", t)
	}
}

// renderNotification подставляет данные в шаблон
func renderNotification(t model.NotificationType, role model.RecipientRole, data TemplateData) (string, error) {
	text, err := templateFor(t, role)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(string(t)).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", t, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", t, err)
	}

	return b.String(), nil
}
