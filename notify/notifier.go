// Package notify delivers the notification outbox. The ledger writes
// notification rows inside its transactions; this worker picks up unsent
// rows on a schedule and emails them out. Delivery is best effort: a mail
// failure is logged and retried up to a cap, and never touches ledger state.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/logger"
	"github.com/saifurrahmanctg/micro-earn-server/models"
)

// Mailer sends one notification email.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer talks to a plain SMTP relay.
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	addr := m.Host + ":" + m.Port
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		m.From, to, subject, body))
	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	return smtp.SendMail(addr, auth, m.From, []string{to}, msg)
}

type Notifier struct {
	db          *gorm.DB
	mailer      Mailer
	scheduler   gocron.Scheduler
	pool        *ants.Pool
	maxAttempts int
	batchSize   int
}

// New builds a notifier sweeping the outbox every interval with a bounded
// worker pool for the actual sends.
func New(db *gorm.DB, mailer Mailer, interval time.Duration, workers, maxAttempts int) (*Notifier, error) {
	if workers < 1 {
		workers = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create mail pool: %w", err)
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		_ = pool.ReleaseTimeout(time.Second)
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	n := &Notifier{
		db:          db,
		mailer:      mailer,
		scheduler:   scheduler,
		pool:        pool,
		maxAttempts: maxAttempts,
		batchSize:   50,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(n.Sweep),
		gocron.WithName("notification-outbox-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = pool.ReleaseTimeout(time.Second)
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("register sweep job: %w", err)
	}
	return n, nil
}

func (n *Notifier) Start() {
	n.scheduler.Start()
	logger.Info("notification outbox worker started")
}

// Sweep picks up unsent notifications and hands them to the pool, then
// waits for the batch. The wait matters: the singleton job mode only guards
// the sweep itself, so a sweep that returned with sends still in flight
// would let the next run select the same rows and double-send. It is
// exported so tests can drive it directly without the scheduler.
func (n *Notifier) Sweep() {
	var rows []models.Notification
	err := n.db.
		Where("email_sent = ? AND email_attempts < ?", false, n.maxAttempts).
		Order("id ASC").
		Limit(n.batchSize).
		Find(&rows).Error
	if err != nil {
		logger.Error("outbox sweep query failed: %v", err)
		return
	}
	var wg sync.WaitGroup
	for _, row := range rows {
		row := row
		wg.Add(1)
		if err := n.pool.Submit(func() {
			defer wg.Done()
			n.deliver(row)
		}); err != nil {
			wg.Done()
			logger.Warn("mail pool rejected notification %d: %v", row.ID, err)
		}
	}
	wg.Wait()
}

func (n *Notifier) deliver(row models.Notification) {
	subject := row.Subject
	if subject == "" {
		subject = "Micro Earn Notification"
	}
	sendErr := n.mailer.Send(row.ToEmail, subject, row.Message)

	updates := map[string]interface{}{
		"email_attempts": gorm.Expr("email_attempts + 1"),
	}
	if sendErr == nil {
		updates["email_sent"] = true
	} else {
		logger.Warn("email delivery to %s failed (notification %d): %v", row.ToEmail, row.ID, sendErr)
	}
	if err := n.db.Model(&models.Notification{}).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
		logger.Error("outbox bookkeeping for notification %d failed: %v", row.ID, err)
	}
}

// Shutdown stops the scheduler and drains the pool. ReleaseTimeout is
// required here: plain Release leaves the pool's maintenance goroutines
// running.
func (n *Notifier) Shutdown(ctx context.Context) error {
	err := n.scheduler.Shutdown()

	timeout := 10 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining > 0 {
			timeout = remaining
		}
	}
	if perr := n.pool.ReleaseTimeout(timeout); perr != nil && err == nil {
		err = perr
	}
	return err
}
