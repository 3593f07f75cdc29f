package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/models"
	"github.com/google/uuid"
)

// --- Requests ---

type CreateApplianceRequest struct {
	Name                   string  `json:"name" validate:"required"`
	Brand                  string  `json:"brand" validate:"required"`
	Model                  string  `json:"model" validate:"required"`
	PurchaseDate           string  `json:"purchaseDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	WarrantyDurationMonths int     `json:"warrantyDurationMonths" validate:"min=1"`
	SerialNumber           *string `json:"serialNumber"`
	PurchaseLocation       *string `json:"purchaseLocation"`
	Notes                  *string `json:"notes"`
}

// UpdateApplianceRequest is a patch: nil fields are left untouched.
type UpdateApplianceRequest struct {
	Name                   *string `json:"name" validate:"omitempty,min=1"`
	Brand                  *string `json:"brand" validate:"omitempty,min=1"`
	Model                  *string `json:"model" validate:"omitempty,min=1"`
	PurchaseDate           *string `json:"purchaseDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	WarrantyDurationMonths *int    `json:"warrantyDurationMonths" validate:"omitempty,min=1"`
	SerialNumber           *string `json:"serialNumber"`
	PurchaseLocation       *string `json:"purchaseLocation"`
	Notes                  *string `json:"notes"`
}

type CreateSupportContactRequest struct {
	Name    string  `json:"name" validate:"required"`
	Company *string `json:"company"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Website *string `json:"website" validate:"omitempty,url"`
	Notes   *string `json:"notes"`
}

type CreateMaintenanceTaskRequest struct {
	TaskName        string           `json:"taskName" validate:"required"`
	ScheduledDate   string           `json:"scheduledDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Frequency       string           `json:"frequency" validate:"required,oneof=One-time Monthly Yearly Custom"`
	ServiceProvider *ServiceProvider `json:"serviceProvider"`
	Notes           *string          `json:"notes"`
	CompletedDate   *string          `json:"completedDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type CompleteMaintenanceTaskRequest struct {
	CompletedDate *string `json:"completedDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type CreateLinkedDocumentRequest struct {
	Title string `json:"title" validate:"required"`
	URL   string `json:"url" validate:"required,url"`
}

// --- Aggregate ---

// Appliance is an appliance together with all of its child records and the
// statuses derived from its dates.
type Appliance struct {
	ID                     uuid.UUID             `json:"id"`
	UserID                 *uuid.UUID            `json:"userId"`
	Name                   string                `json:"name"`
	Brand                  string                `json:"brand"`
	Model                  string                `json:"model"`
	PurchaseDate           time.Time             `json:"purchaseDate"`
	WarrantyDurationMonths int                   `json:"warrantyDurationMonths"`
	WarrantyEndDate        time.Time             `json:"warrantyEndDate"`
	WarrantyStatus         models.WarrantyStatus `json:"warrantyStatus"`
	SerialNumber           *string               `json:"serialNumber"`
	PurchaseLocation       *string               `json:"purchaseLocation"`
	Notes                  *string               `json:"notes"`
	CreatedAt              time.Time             `json:"createdAt"`
	UpdatedAt              time.Time             `json:"updatedAt"`
	SupportContacts        []SupportContact      `json:"supportContacts"`
	MaintenanceTasks       []MaintenanceTask     `json:"maintenanceTasks"`
	LinkedDocuments        []LinkedDocument      `json:"linkedDocuments"`
}

type SupportContact struct {
	ID          uuid.UUID `json:"id"`
	ApplianceID uuid.UUID `json:"applianceId"`
	Name        string    `json:"name"`
	Company     *string   `json:"company"`
	Phone       *string   `json:"phone"`
	Email       *string   `json:"email"`
	Website     *string   `json:"website"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ServiceProvider struct {
	Name  string  `json:"name" validate:"required"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Notes *string `json:"notes,omitempty"`
}

type MaintenanceTask struct {
	ID              uuid.UUID                `json:"id"`
	ApplianceID     uuid.UUID                `json:"applianceId"`
	TaskName        string                   `json:"taskName"`
	ScheduledDate   time.Time                `json:"scheduledDate"`
	Frequency       string                   `json:"frequency"`
	ServiceProvider *ServiceProvider         `json:"serviceProvider"`
	Notes           *string                  `json:"notes"`
	Status          models.MaintenanceStatus `json:"status"`
	CompletedDate   *time.Time               `json:"completedDate"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

type LinkedDocument struct {
	ID          uuid.UUID `json:"id"`
	ApplianceID uuid.UUID `json:"applianceId"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ApplianceStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Expiring int `json:"expiring"`
	Expired  int `json:"expired"`
}
