package service

import (
	"time"

	"bookdrop/library-api/internal/model"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mailer is what the sweeps need from the mail dispatcher.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// Reminder periodically mails users whose borrowed books are overdue
// by more than a day. Marking Notified in the same pass makes the job
// idempotent, overlapping runs won't mail anyone twice.
type Reminder struct {
	db     *gorm.DB
	mailer Mailer
	cron   *cron.Cron
}

func NewReminder(db *gorm.DB, mailer Mailer) *Reminder {
	return &Reminder{
		db:     db,
		mailer: mailer,
		cron:   cron.New(),
	}
}

// Start schedules the sweep with the given cron spec and kicks off the
// scheduler.
func (r *Reminder) Start(spec string) error {
	_, err := r.cron.AddFunc(spec, r.sweep)
	if err != nil {
		return err
	}

	r.cron.Start()
	zap.L().Debug("Borrow reminder attached", zap.String("cron", spec))
	return nil
}

// Stop waits for a running sweep to finish and shuts the scheduler down.
func (r *Reminder) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reminder) sweep() {
	oneDayAgo := time.Now().Add(-24 * time.Hour)

	var overdue []model.Borrow
	err := r.db.
		Preload("User").
		Preload("Book").
		Where("due_date < ? AND return_date IS NULL AND notified = ?", oneDayAgo, false).
		Find(&overdue).Error
	if err != nil {
		zap.L().Error("Failed to query overdue borrows", zap.Error(err))
		return
	}

	for _, b := range overdue {
		if b.User.Email == "" {
			continue
		}

		err = r.mailer.Send(b.User.Email, "Book Return Reminder", ReturnReminderBody(b.User.Name, b.Book.Title))
		if err != nil {
			zap.L().Error("Failed to send reminder email",
				zap.Error(err), zap.String("borrowID", b.ID))
			continue
		}

		err = r.db.Model(&model.Borrow{}).
			Where("id = ?", b.ID).
			Update("notified", true).Error
		if err != nil {
			zap.L().Error("Failed to mark borrow as notified",
				zap.Error(err), zap.String("borrowID", b.ID))
			continue
		}

		zap.L().Info("Reminder sent", zap.String("email", b.User.Email))
	}
}
