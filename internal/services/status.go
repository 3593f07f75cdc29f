package services

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/models"
)

// ExpiringSoonDays is the window before warranty end in which a warranty is
// reported as expiring soon. The boundary day itself counts as expiring.
const ExpiringSoonDays = 30

// WarrantyEndDate adds warrantyMonths calendar months to purchaseDate. When the
// purchase day does not exist in the target month the result is clamped to the
// last day of that month (Jan 31 + 1 month = Feb 28/29), unlike time.AddDate
// which would roll over into March.
func WarrantyEndDate(purchaseDate time.Time, warrantyMonths int) time.Time {
	y, m, d := purchaseDate.Date()
	hh, mm, ss := purchaseDate.Clock()
	loc := purchaseDate.Location()

	first := time.Date(y, m+time.Month(warrantyMonths), 1, 0, 0, 0, 0, loc)
	if last := daysIn(first.Year(), first.Month(), loc); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, purchaseDate.Nanosecond(), loc)
}

// WarrantyStatus derives the warranty state at now. A warranty is expired only
// strictly after its end instant.
func WarrantyStatus(purchaseDate time.Time, warrantyMonths int, now time.Time) models.WarrantyStatus {
	end := WarrantyEndDate(purchaseDate, warrantyMonths)
	if now.After(end) {
		return models.WarrantyExpired
	}
	if daysBetween(now, end) <= ExpiringSoonDays {
		return models.WarrantyExpiringSoon
	}
	return models.WarrantyActive
}

// MaintenanceStatus derives a task's state at now. A completion date always
// wins over the schedule.
func MaintenanceStatus(scheduledDate time.Time, completedDate *time.Time, now time.Time) models.MaintenanceStatus {
	if completedDate != nil {
		return models.MaintenanceCompleted
	}
	if scheduledDate.Before(now) {
		return models.MaintenanceOverdue
	}
	return models.MaintenanceUpcoming
}

// daysBetween counts whole days from a to b, truncating partial days.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
