package services

import (
	"encoding/json"
	"time"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/models"
)

// AssembleAppliance turns an appliance row and its preloaded children into the
// aggregate returned to callers. Task statuses are always recomputed at now;
// whatever was persisted in the status column is ignored. Missing collections
// come back as empty slices.
func AssembleAppliance(row *models.Appliance, now time.Time) dto.Appliance {
	out := dto.Appliance{
		ID:                     row.ID,
		UserID:                 row.UserID,
		Name:                   row.Name,
		Brand:                  row.Brand,
		Model:                  row.Model,
		PurchaseDate:           row.PurchaseDate,
		WarrantyDurationMonths: row.WarrantyDurationMonths,
		WarrantyEndDate:        WarrantyEndDate(row.PurchaseDate, row.WarrantyDurationMonths),
		WarrantyStatus:         WarrantyStatus(row.PurchaseDate, row.WarrantyDurationMonths, now),
		SerialNumber:           row.SerialNumber,
		PurchaseLocation:       row.PurchaseLocation,
		Notes:                  row.Notes,
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
		SupportContacts:        make([]dto.SupportContact, 0, len(row.SupportContacts)),
		MaintenanceTasks:       make([]dto.MaintenanceTask, 0, len(row.MaintenanceTasks)),
		LinkedDocuments:        make([]dto.LinkedDocument, 0, len(row.LinkedDocuments)),
	}

	for _, c := range row.SupportContacts {
		out.SupportContacts = append(out.SupportContacts, dto.SupportContact{
			ID:          c.ID,
			ApplianceID: c.ApplianceID,
			Name:        c.Name,
			Company:     c.Company,
			Phone:       c.Phone,
			Email:       c.Email,
			Website:     c.Website,
			Notes:       c.Notes,
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
		})
	}

	for i := range row.MaintenanceTasks {
		out.MaintenanceTasks = append(out.MaintenanceTasks, assembleTask(&row.MaintenanceTasks[i], now))
	}

	for _, d := range row.LinkedDocuments {
		out.LinkedDocuments = append(out.LinkedDocuments, dto.LinkedDocument{
			ID:          d.ID,
			ApplianceID: d.ApplianceID,
			Title:       d.Title,
			URL:         d.URL,
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		})
	}

	return out
}

func assembleTask(t *models.MaintenanceTask, now time.Time) dto.MaintenanceTask {
	return dto.MaintenanceTask{
		ID:              t.ID,
		ApplianceID:     t.ApplianceID,
		TaskName:        t.TaskName,
		ScheduledDate:   t.ScheduledDate,
		Frequency:       t.Frequency,
		ServiceProvider: decodeServiceProvider(t.ServiceProvider),
		Notes:           t.Notes,
		Status:          MaintenanceStatus(t.ScheduledDate, t.CompletedDate, now),
		CompletedDate:   t.CompletedDate,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// decodeServiceProvider returns nil for absent, null or unreadable values.
func decodeServiceProvider(raw []byte) *dto.ServiceProvider {
	if len(raw) == 0 {
		return nil
	}
	var sp *models.ServiceProvider
	if err := json.Unmarshal(raw, &sp); err != nil || sp == nil {
		return nil
	}
	return &dto.ServiceProvider{
		Name:  sp.Name,
		Phone: sp.Phone,
		Email: sp.Email,
		Notes: sp.Notes,
	}
}

func encodeServiceProvider(sp *dto.ServiceProvider) []byte {
	if sp == nil {
		return nil
	}
	b, err := json.Marshal(models.ServiceProvider{
		Name:  sp.Name,
		Phone: sp.Phone,
		Email: sp.Email,
		Notes: sp.Notes,
	})
	if err != nil {
		return nil
	}
	return b
}
