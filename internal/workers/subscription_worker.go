package workers

import (
	"context"
	"time"

	"wagyu_backend/internal/email"
	"wagyu_backend/internal/logger"
	"wagyu_backend/internal/repositories"

	"gorm.io/gorm"
)

// SubscriptionWorker expires lapsed trials and subscriptions, reminds users
// whose trial is about to end and prunes old refresh tokens.
type SubscriptionWorker struct {
	db               *gorm.DB
	subscriptionRepo repositories.SubscriptionRepository
	userRepo         repositories.UserRepository
	emailProvider    email.Provider
}

func NewSubscriptionWorker(db *gorm.DB, emailProvider email.Provider) *SubscriptionWorker {
	return &SubscriptionWorker{
		db:               db,
		subscriptionRepo: repositories.NewSubscriptionRepository(),
		userRepo:         repositories.NewUserRepository(),
		emailProvider:    emailProvider,
	}
}

func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.expireSubscriptions(ctx)
	go w.notifyEndingTrials(ctx)
	go w.cleanRefreshTokens(ctx)
}

// expireSubscriptions runs on an hourly sweep. Trials past their end date
// and paid periods that lapsed without a renewal event both drop to
// expired/none.
func (w *SubscriptionWorker) expireSubscriptions(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	// Run once at startup so a restart doesn't delay expiries.
	w.runExpirySweep()

	for {
		select {
		case <-ctx.Done():
			logger.Info("subscription worker stopped")
			return
		case <-ticker.C:
			w.runExpirySweep()
		}
	}
}

func (w *SubscriptionWorker) runExpirySweep() {
	now := time.Now()

	trials, err := w.subscriptionRepo.ExpireTrials(w.db, now)
	logger.WorkerLog("subscription", "expire_trials", err)
	if trials > 0 {
		logger.Info("expired trial subscriptions", "count", trials)
	}

	lapsed, err := w.subscriptionRepo.ExpireLapsed(w.db, now)
	logger.WorkerLog("subscription", "expire_lapsed", err)
	if lapsed > 0 {
		logger.Info("expired lapsed subscriptions", "count", lapsed)
	}
}

// notifyEndingTrials mails users whose trial ends within the next day. The
// daily cadence and one-day window keep each user to a single reminder.
func (w *SubscriptionWorker) notifyEndingTrials(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var rows []struct {
				Email        string
				TrialEndDate time.Time
			}
			now := time.Now()
			err := w.db.Table("subscriptions").
				Select("users.email, subscriptions.trial_end_date").
				Joins("JOIN users ON users.id = subscriptions.user_id").
				Where("subscriptions.status = ? AND subscriptions.trial_end_date BETWEEN ? AND ?",
					"trial", now, now.Add(24*time.Hour)).
				Scan(&rows).Error
			logger.WorkerLog("subscription", "trial_ending_scan", err)
			if err != nil {
				continue
			}

			for _, row := range rows {
				daysLeft := int(time.Until(row.TrialEndDate).Hours()/24) + 1
				if err := w.emailProvider.SendTrialEnding(row.Email, daysLeft); err != nil {
					logger.WithError(err).Warn("trial ending email failed", "email", row.Email)
				}
			}
		}
	}
}

func (w *SubscriptionWorker) cleanRefreshTokens(ctx context.Context) {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := w.userRepo.CleanExpiredRefreshTokens(w.db)
			logger.WorkerLog("subscription", "clean_refresh_tokens", err)
		}
	}
}
