package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/ownership"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListOptions narrows List. Filter accepts "", "all" or one of the warranty
// statuses.
type ListOptions struct {
	Search string
	Filter string
}

// ApplianceService owns every read and write of appliance aggregates. Each
// method takes an optional acting user; when set, only appliances owned by
// that user are visible or affected, and anything else looks missing.
type ApplianceService struct {
	db     *gorm.DB
	owners OwnerResolver
	now    func() time.Time
}

func NewApplianceService(db *gorm.DB, owners OwnerResolver) *ApplianceService {
	return &ApplianceService{db: db, owners: owners, now: time.Now}
}

// WithClock replaces the time source used for timestamps and derived statuses.
func (s *ApplianceService) WithClock(now func() time.Time) *ApplianceService {
	s.now = now
	return s
}

func (s *ApplianceService) clock() time.Time {
	return s.now().UTC()
}

func (s *ApplianceService) List(ctx context.Context, actor *uuid.UUID, opts ListOptions) ([]dto.Appliance, error) {
	filter, err := parseWarrantyFilter(opts.Filter)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(opts.Search))

	var rows []models.Appliance
	q := s.db.WithContext(ctx).Scopes(ownership.ForOwner(actor), withChildren)
	if err := q.Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		logStoreError("list appliances", actor, uuid.Nil, err)
		return nil, fmt.Errorf("%w: list appliances: %v", ErrStoreUnavailable, err)
	}

	now := s.clock()
	out := make([]dto.Appliance, 0, len(rows))
	for i := range rows {
		if !matchesSearch(&rows[i], search) {
			continue
		}
		a := AssembleAppliance(&rows[i], now)
		if filter != "" && a.WarrantyStatus != filter {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// GetByID returns ErrApplianceNotFound when the appliance is missing, owned by
// someone else, or could not be read.
func (s *ApplianceService) GetByID(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*dto.Appliance, error) {
	row, err := s.load(ctx, s.db, actor, id)
	if err != nil {
		if !errors.Is(err, ErrApplianceNotFound) {
			logStoreError("get appliance", actor, id, err)
		}
		return nil, ErrApplianceNotFound
	}
	a := AssembleAppliance(row, s.clock())
	return &a, nil
}

func (s *ApplianceService) Create(ctx context.Context, actor *uuid.UUID, req dto.CreateApplianceRequest) (*dto.Appliance, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	purchaseDate, err := parseDateTime("purchaseDate", req.PurchaseDate)
	if err != nil {
		return nil, err
	}

	owner, err := s.owners.ResolveOwner(ctx, actor)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			logStoreError("resolve owner", actor, uuid.Nil, err)
		}
		return nil, err
	}

	now := s.clock()
	row := models.Appliance{
		ID:                     uuid.New(),
		UserID:                 &owner,
		Name:                   req.Name,
		Brand:                  req.Brand,
		Model:                  req.Model,
		PurchaseDate:           purchaseDate,
		WarrantyDurationMonths: req.WarrantyDurationMonths,
		SerialNumber:           optional(req.SerialNumber),
		PurchaseLocation:       optional(req.PurchaseLocation),
		Notes:                  optional(req.Notes),
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		logStoreError("create appliance", actor, row.ID, err)
		return nil, fmt.Errorf("%w: create appliance: %v", ErrStoreUnavailable, err)
	}

	a := AssembleAppliance(&row, now)
	return &a, nil
}

// Update applies the non-nil fields of req and returns the re-read aggregate.
func (s *ApplianceService) Update(ctx context.Context, actor *uuid.UUID, id uuid.UUID, req dto.UpdateApplianceRequest) (*dto.Appliance, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.PurchaseDate != nil {
		t, err := parseDateTime("purchaseDate", *req.PurchaseDate)
		if err != nil {
			return nil, err
		}
		updates["purchase_date"] = t
	}
	if req.WarrantyDurationMonths != nil {
		updates["warranty_duration_months"] = *req.WarrantyDurationMonths
	}
	// An empty string clears an optional field.
	if req.SerialNumber != nil {
		updates["serial_number"] = optional(req.SerialNumber)
	}
	if req.PurchaseLocation != nil {
		updates["purchase_location"] = optional(req.PurchaseLocation)
	}
	if req.Notes != nil {
		updates["notes"] = optional(req.Notes)
	}

	return s.mutate(ctx, actor, id, "update appliance", updates, nil)
}

// Delete reports whether an appliance was removed. Children go in the same
// transaction. Deleting an already deleted id returns false with no error.
func (s *ApplianceService) Delete(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Appliance
		err := tx.Scopes(ownership.ForOwner(actor)).Select("id").Where("id = ?", id).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		for _, child := range []interface{}{&models.SupportContact{}, &models.MaintenanceTask{}, &models.LinkedDocument{}} {
			if err := tx.Where("appliance_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}

		res := tx.Scopes(ownership.ForOwner(actor)).Where("id = ?", id).Delete(&models.Appliance{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		logStoreError("delete appliance", actor, id, err)
		return false, fmt.Errorf("%w: delete appliance: %v", ErrStoreUnavailable, err)
	}
	return deleted, nil
}

// Stats tallies the warranty status of every visible appliance.
func (s *ApplianceService) Stats(ctx context.Context, actor *uuid.UUID) (*dto.ApplianceStats, error) {
	all, err := s.List(ctx, actor, ListOptions{})
	if err != nil {
		return nil, err
	}

	stats := &dto.ApplianceStats{Total: len(all)}
	for _, a := range all {
		switch a.WarrantyStatus {
		case models.WarrantyActive:
			stats.Active++
		case models.WarrantyExpiringSoon:
			stats.Expiring++
		case models.WarrantyExpired:
			stats.Expired++
		}
	}
	return stats, nil
}

// --- Child records ---

func (s *ApplianceService) AddSupportContact(ctx context.Context, actor *uuid.UUID, applianceID uuid.UUID, req dto.CreateSupportContactRequest) (*dto.Appliance, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, applianceID, "add support contact", nil, func(tx *gorm.DB, now time.Time) error {
		return tx.Create(&models.SupportContact{
			ID:          uuid.New(),
			ApplianceID: applianceID,
			Name:        req.Name,
			Company:     optional(req.Company),
			Phone:       optional(req.Phone),
			Email:       optional(req.Email),
			Website:     optional(req.Website),
			Notes:       optional(req.Notes),
			CreatedAt:   now,
			UpdatedAt:   now,
		}).Error
	})
}

func (s *ApplianceService) AddMaintenanceTask(ctx context.Context, actor *uuid.UUID, applianceID uuid.UUID, req dto.CreateMaintenanceTaskRequest) (*dto.Appliance, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	scheduled, err := parseDateTime("scheduledDate", req.ScheduledDate)
	if err != nil {
		return nil, err
	}
	var completed *time.Time
	if req.CompletedDate != nil {
		t, err := parseDateTime("completedDate", *req.CompletedDate)
		if err != nil {
			return nil, err
		}
		completed = &t
	}

	return s.mutate(ctx, actor, applianceID, "add maintenance task", nil, func(tx *gorm.DB, now time.Time) error {
		return tx.Create(&models.MaintenanceTask{
			ID:              uuid.New(),
			ApplianceID:     applianceID,
			TaskName:        req.TaskName,
			ScheduledDate:   scheduled,
			Frequency:       req.Frequency,
			ServiceProvider: encodeServiceProvider(req.ServiceProvider),
			Notes:           optional(req.Notes),
			Status:          string(MaintenanceStatus(scheduled, completed, now)),
			CompletedDate:   completed,
			CreatedAt:       now,
			UpdatedAt:       now,
		}).Error
	})
}

// CompleteMaintenanceTask stamps a task as done, at req.CompletedDate or now.
func (s *ApplianceService) CompleteMaintenanceTask(ctx context.Context, actor *uuid.UUID, applianceID, taskID uuid.UUID, req dto.CompleteMaintenanceTaskRequest) (*dto.Appliance, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	var completedAt *time.Time
	if req.CompletedDate != nil {
		t, err := parseDateTime("completedDate", *req.CompletedDate)
		if err != nil {
			return nil, err
		}
		completedAt = &t
	}

	return s.mutate(ctx, actor, applianceID, "complete maintenance task", nil, func(tx *gorm.DB, now time.Time) error {
		completed := now
		if completedAt != nil {
			completed = *completedAt
		}
		res := tx.Model(&models.MaintenanceTask{}).
			Where("id = ? AND appliance_id = ?", taskID, applianceID).
			Updates(map[string]interface{}{
				"completed_date": completed,
				"status":         string(models.MaintenanceCompleted),
				"updated_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrChildNotFound
		}
		return nil
	})
}

func (s *ApplianceService) AddLinkedDocument(ctx context.Context, actor *uuid.UUID, applianceID uuid.UUID, req dto.CreateLinkedDocumentRequest) (*dto.Appliance, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, applianceID, "add linked document", nil, func(tx *gorm.DB, now time.Time) error {
		return tx.Create(&models.LinkedDocument{
			ID:          uuid.New(),
			ApplianceID: applianceID,
			Title:       req.Title,
			URL:         req.URL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}).Error
	})
}

func (s *ApplianceService) RemoveSupportContact(ctx context.Context, actor *uuid.UUID, applianceID, contactID uuid.UUID) (*dto.Appliance, error) {
	return s.removeChild(ctx, actor, applianceID, contactID, &models.SupportContact{}, "remove support contact")
}

func (s *ApplianceService) RemoveMaintenanceTask(ctx context.Context, actor *uuid.UUID, applianceID, taskID uuid.UUID) (*dto.Appliance, error) {
	return s.removeChild(ctx, actor, applianceID, taskID, &models.MaintenanceTask{}, "remove maintenance task")
}

func (s *ApplianceService) RemoveLinkedDocument(ctx context.Context, actor *uuid.UUID, applianceID, documentID uuid.UUID) (*dto.Appliance, error) {
	return s.removeChild(ctx, actor, applianceID, documentID, &models.LinkedDocument{}, "remove linked document")
}

func (s *ApplianceService) removeChild(ctx context.Context, actor *uuid.UUID, applianceID, childID uuid.UUID, model interface{}, op string) (*dto.Appliance, error) {
	return s.mutate(ctx, actor, applianceID, op, nil, func(tx *gorm.DB, _ time.Time) error {
		res := tx.Where("id = ? AND appliance_id = ?", childID, applianceID).Delete(model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrChildNotFound
		}
		return nil
	})
}

// mutate updates the parent row (always touching updated_at, which doubles as
// the ownership check), runs fn for child writes and re-reads the aggregate,
// all in one transaction.
func (s *ApplianceService) mutate(
	ctx context.Context,
	actor *uuid.UUID,
	id uuid.UUID,
	op string,
	updates map[string]interface{},
	fn func(tx *gorm.DB, now time.Time) error,
) (*dto.Appliance, error) {
	now := s.clock()
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = now

	var row *models.Appliance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Appliance{}).Scopes(ownership.ForOwner(actor)).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrApplianceNotFound
		}
		if fn != nil {
			if err := fn(tx, now); err != nil {
				return err
			}
		}

		var err error
		row, err = s.load(ctx, tx, actor, id)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrApplianceNotFound) || errors.Is(err, ErrChildNotFound) {
			return nil, err
		}
		logStoreError(op, actor, id, err)
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
	}

	a := AssembleAppliance(row, now)
	return &a, nil
}

func (s *ApplianceService) load(ctx context.Context, db *gorm.DB, actor *uuid.UUID, id uuid.UUID) (*models.Appliance, error) {
	var row models.Appliance
	err := db.WithContext(ctx).Scopes(ownership.ForOwner(actor), withChildren).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApplianceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("SupportContacts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("MaintenanceTasks", func(db *gorm.DB) *gorm.DB { return db.Order("scheduled_date ASC") }).
		Preload("LinkedDocuments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
}

func parseWarrantyFilter(filter string) (models.WarrantyStatus, error) {
	switch filter {
	case "", "all":
		return "", nil
	case string(models.WarrantyActive), string(models.WarrantyExpiringSoon), string(models.WarrantyExpired):
		return models.WarrantyStatus(filter), nil
	default:
		return "", invalidField("filter", "must be one of: all, Active, Expiring Soon, Expired")
	}
}

// matchesSearch folds case in Go rather than in SQL, whose LOWER() only
// handles ASCII on SQLite and on Postgres under the C locale. search must
// already be lowercased.
func matchesSearch(row *models.Appliance, search string) bool {
	if search == "" {
		return true
	}
	for _, field := range []string{row.Name, row.Brand, row.Model} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// optional maps empty strings to NULL.
func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func logStoreError(op string, actor *uuid.UUID, applianceID uuid.UUID, err error) {
	attrs := []any{"op", op, "error", err}
	if actor != nil {
		attrs = append(attrs, "user_id", actor.String())
	}
	if applianceID != uuid.Nil {
		attrs = append(attrs, "appliance_id", applianceID.String())
	}
	slog.Error("appliance store call failed", attrs...)
}
