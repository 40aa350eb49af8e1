package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/talkincode/toughcrm/internal/notify"
	"github.com/talkincode/toughcrm/internal/upstream"
)

const ReminderJobName = "order_reminders"

// RecentOrdersClient lists orders from the GraphQL endpoint
type RecentOrdersClient interface {
	RecentOrders(ctx context.Context, since time.Time) ([]upstream.OrderSummary, error)
}

// ReminderJob logs every order placed in the last days and mails a reminder to its customer.
type ReminderJob struct {
	log    *FileLog
	client RecentOrdersClient
	mailer notify.Mailer
	days   int
	now    func() time.Time
}

func NewReminderJob(log *FileLog, client RecentOrdersClient, mailer notify.Mailer, days int) *ReminderJob {
	if days <= 0 {
		days = 7
	}
	if mailer == nil {
		mailer = notify.NopMailer{}
	}
	return &ReminderJob{log: log, client: client, mailer: mailer, days: days, now: time.Now}
}

func (j *ReminderJob) Name() string { return ReminderJobName }

// since is the start of the day days ago
func (j *ReminderJob) since() time.Time {
	y, m, d := j.now().AddDate(0, 0, -j.days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, j.now().Location())
}

func (j *ReminderJob) Run(ctx context.Context) (string, error) {
	orders, err := j.client.RecentOrders(ctx, j.since())
	if err != nil {
		if werr := j.log.Write(fmt.Sprintf("Error fetching orders: %s", err.Error())); werr != nil {
			return "", werr
		}
		return "", err
	}

	lines := make([]string, 0, len(orders))
	sent := 0
	for _, o := range orders {
		lines = append(lines, fmt.Sprintf("Order ID: %s, Email: %s", o.ID, o.Customer.Email))
		if o.Customer.Email == "" {
			continue
		}
		if err := j.mailer.Send(ctx, notify.OrderReminder(o.Customer.Email, o.Customer.Name, o.ID)); err != nil {
			zap.L().Warn("order reminder not sent",
				zap.String("order_id", o.ID),
				zap.Error(err),
				zap.String("namespace", "jobs"))
			continue
		}
		sent++
	}
	if err := j.log.WriteLines(lines...); err != nil {
		return "", err
	}
	return fmt.Sprintf("Order reminders processed: %d orders, %d mails", len(orders), sent), nil
}
