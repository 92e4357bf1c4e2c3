package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"time-control/internal/events"
	"time-control/internal/models"
	"time-control/pkg/dateutil"
	"time-control/pkg/logger"
)

// MessageSender - транспорт сообщений, реализуется telegram.Client
type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

// UserLookup находит получателя уведомления
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// TelegramNotifier превращает события в сообщения сотрудникам и администратору
type TelegramNotifier struct {
	sender      MessageSender
	users       UserLookup
	adminChatID int64
	logger      *logrus.Logger
}

func NewTelegramNotifier(sender MessageSender, users UserLookup, adminChatID int64, log *logrus.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender:      sender,
		users:       users,
		adminChatID: adminChatID,
		logger:      logger.OrDefault(log),
	}
}

var requestTypeNames = map[models.ChangeRequestType]string{
	models.RequestAdd:            "добавление записи времени",
	models.RequestEdit:           "изменение записи времени",
	models.RequestDelete:         "удаление записи времени",
	models.RequestAddVacation:    "добавление отпуска",
	models.RequestEditVacation:   "изменение отпуска",
	models.RequestDeleteVacation: "удаление отпуска",
	models.RequestAddSickDay:     "добавление больничного",
	models.RequestEditSickDay:    "изменение больничного",
	models.RequestDeleteSickDay:  "удаление больничного",
}

// Handle отправляет сообщение по событию. События без получателя пропускаются.
func (n *TelegramNotifier) Handle(ctx context.Context, evt events.Event) error {
	switch evt.Type {
	case events.MissingEntries:
		return n.notifyUser(ctx, evt.UserID, missingEntriesText(evt))
	case events.ChangeRequestResolved:
		return n.notifyUser(ctx, evt.UserID, resolvedText(evt))
	case events.ChangeRequestSubmitted:
		if n.adminChatID == 0 {
			return nil
		}
		return n.send(n.adminChatID, n.submittedText(ctx, evt))
	}
	return nil
}

func (n *TelegramNotifier) notifyUser(ctx context.Context, userID uint, text string) error {
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.ChatID == 0 {
		n.logger.WithField("user_id", userID).Debug("No chat for user, notification skipped")
		return nil
	}
	return n.send(user.ChatID, text)
}

func (n *TelegramNotifier) send(chatID int64, text string) error {
	if err := n.sender.SendMessage(chatID, text); err != nil {
		n.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send notification")
		return err
	}
	return nil
}

func missingEntriesText(evt events.Event) string {
	var lines []string
	lines = append(lines, "⏰ Не заполнено рабочее время за дни:")
	for _, raw := range strings.Split(evt.Payload["dates"], ",") {
		d, err := time.Parse(dateutil.Layout, raw)
		if err != nil {
			continue
		}
		lines = append(lines, "• "+d.Format("02.01.2006"))
	}
	return strings.Join(lines, "\n")
}

func resolvedText(evt events.Event) string {
	kind := requestTypeNames[models.ChangeRequestType(evt.Payload["request_type"])]
	verdict := "❌ отклонен"
	if models.RequestStatus(evt.Payload["status"]) == models.RequestApproved {
		verdict = "✅ одобрен"
	}

	// Сообщения уходят в режиме HTML, пользовательский текст экранируется
	text := fmt.Sprintf("Запрос #%s (%s) %s", html.EscapeString(evt.Payload["request_id"]), kind, verdict)
	if comment := evt.Payload["admin_comment"]; comment != "" {
		text += "\nКомментарий: " + html.EscapeString(comment)
	}
	return text
}

func (n *TelegramNotifier) submittedText(ctx context.Context, evt events.Event) string {
	who := fmt.Sprintf("#%d", evt.UserID)
	if user, err := n.users.GetByID(ctx, evt.UserID); err == nil && user != nil {
		who = user.FullName()
	}
	kind := requestTypeNames[models.ChangeRequestType(evt.Payload["request_type"])]
	return fmt.Sprintf("📝 Новый запрос #%s от %s: %s",
		html.EscapeString(evt.Payload["request_id"]), html.EscapeString(who), kind)
}
