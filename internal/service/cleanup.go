package service

import (
	"context"
	"time"

	"bookdrop/library-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PruneExpiredRegistrations deletes unverified registrations whose
// verification code expired more than grace ago. The grace window
// keeps a row around long enough for a late VerifyOTP to still answer
// Expired instead of NotFound.
func PruneExpiredRegistrations(db *gorm.DB, grace time.Duration) (int64, error) {
	cutoff := time.Now().Add(-grace)

	res := db.
		Where("account_verified = ? AND verification_code_expire < ?", false, cutoff).
		Delete(model.User{})

	return res.RowsAffected, res.Error
}

// AttemptCleanup periodically prunes stale unverified registrations.
// This is what frees up the per-email attempt cap again. Cancel the
// context to stop the sweep.
func AttemptCleanup(ctx context.Context, t, grace time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Registration attempt cleanup attached",
		zap.Duration("tick_every", t), zap.Duration("grace", grace))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			pruned, err := PruneExpiredRegistrations(db, grace)
			if err != nil {
				zap.L().Error("Failed to prune expired registrations", zap.Error(err))
				continue
			}

			if pruned > 0 {
				zap.L().Debug("Pruned expired registrations", zap.Int64("count", pruned))
			}
		}
	}()
}
