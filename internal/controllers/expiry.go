package controllers

import (
	"time"

	"github.com/sirupsen/logrus"

	"ride_pool/internal/config"
	"ride_pool/internal/models"
)

// ExpireOverdueRides marks scheduled rides whose date has passed as expired.
// Clients can still flip is_expired themselves via ride update; this sweep
// just catches rides nobody touched.
func ExpireOverdueRides() (int64, error) {
	res := config.DB.Model(&models.Ride{}).
		Where("ride_date < ? AND is_expired = ? AND ride_status = ?",
			time.Now(), false, models.RideScheduled).
		Update("is_expired", true)
	return res.RowsAffected, res.Error
}

// StartExpirySweeper runs ExpireOverdueRides on a fixed interval.
func StartExpirySweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			n, err := ExpireOverdueRides()
			if err != nil {
				logrus.WithError(err).Error("Ride expiry sweep failed.")
				continue
			}
			if n > 0 {
				logrus.WithField("expired", n).Info("Marked overdue rides as expired.")
			}
		}
	}()
}
