package messaging

import (
	"context"
	"time"

	"github.com/oksasatya/go-users-auth-api/internal/domain/entity"
	"github.com/oksasatya/go-users-auth-api/pkg/mailer"
	tpl "github.com/oksasatya/go-users-auth-api/pkg/mailer/templates"
)

// Publisher puts a JSON message on the email queue; *helpers.RabbitPublisher satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// EmailNotifier turns account events into queued email jobs for cmd/email_worker.
type EmailNotifier struct {
	Pub     Publisher
	AppName string
	Now     func() time.Time
}

func NewEmailNotifier(pub Publisher, appName string) *EmailNotifier {
	return &EmailNotifier{Pub: pub, AppName: appName, Now: time.Now}
}

func (n *EmailNotifier) UserRegistered(ctx context.Context, u *entity.User) error {
	return n.Pub.PublishJSON(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: tpl.Welcome,
		Data:     tpl.NewWelcomeData(n.AppName, u.Name, u.Email),
	})
}

func (n *EmailNotifier) UserLoggedIn(ctx context.Context, u *entity.User) error {
	return n.Pub.PublishJSON(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: tpl.LoginNotification,
		Data:     tpl.NewLoginNotificationData(n.AppName, u.Name, u.Email, tpl.WithTime(n.Now())),
	})
}
