package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WarrantyStatus string

const (
	WarrantyActive       WarrantyStatus = "Active"
	WarrantyExpiringSoon WarrantyStatus = "Expiring Soon"
	WarrantyExpired      WarrantyStatus = "Expired"
)

type MaintenanceStatus string

const (
	MaintenanceUpcoming  MaintenanceStatus = "Upcoming"
	MaintenanceCompleted MaintenanceStatus = "Completed"
	MaintenanceOverdue   MaintenanceStatus = "Overdue"
)

var Frequencies = []string{"One-time", "Monthly", "Yearly", "Custom"}

// Appliance is the persisted appliance row. UserID is nullable for legacy rows
// created before owners were required.
type Appliance struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                 *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User                   *User      `gorm:"foreignKey:UserID" json:"-"`
	Name                   string     `gorm:"size:255;not null" json:"name"`
	Brand                  string     `gorm:"size:255;not null" json:"brand"`
	Model                  string     `gorm:"size:255;not null" json:"model"`
	PurchaseDate           time.Time  `gorm:"not null" json:"purchase_date"`
	WarrantyDurationMonths int        `gorm:"not null" json:"warranty_duration_months"`
	SerialNumber           *string    `gorm:"size:255" json:"serial_number"`
	PurchaseLocation       *string    `gorm:"size:255" json:"purchase_location"`
	Notes                  *string    `gorm:"type:text" json:"notes"`
	CreatedAt              time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`

	SupportContacts  []SupportContact  `gorm:"foreignKey:ApplianceID;constraint:OnDelete:CASCADE" json:"support_contacts"`
	MaintenanceTasks []MaintenanceTask `gorm:"foreignKey:ApplianceID;constraint:OnDelete:CASCADE" json:"maintenance_tasks"`
	LinkedDocuments  []LinkedDocument  `gorm:"foreignKey:ApplianceID;constraint:OnDelete:CASCADE" json:"linked_documents"`
}

type SupportContact struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ApplianceID uuid.UUID `gorm:"type:uuid;not null;index" json:"appliance_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Company     *string   `gorm:"size:255" json:"company"`
	Phone       *string   `gorm:"size:50" json:"phone"`
	Email       *string   `gorm:"size:255" json:"email"`
	Website     *string   `gorm:"size:500" json:"website"`
	Notes       *string   `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServiceProvider is stored as a single JSON value on maintenance_tasks.
type ServiceProvider struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// MaintenanceTask keeps a status column for older readers. It is advisory only:
// reads always derive the status from ScheduledDate and CompletedDate.
type MaintenanceTask struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ApplianceID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"appliance_id"`
	TaskName        string         `gorm:"size:255;not null" json:"task_name"`
	ScheduledDate   time.Time      `gorm:"not null;index" json:"scheduled_date"`
	Frequency       string         `gorm:"size:50;not null" json:"frequency"`
	ServiceProvider datatypes.JSON `json:"service_provider"`
	Notes           *string        `gorm:"type:text" json:"notes"`
	Status          string         `gorm:"size:50;not null;default:'Upcoming'" json:"status"`
	CompletedDate   *time.Time     `json:"completed_date"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type LinkedDocument struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ApplianceID uuid.UUID `gorm:"type:uuid;not null;index" json:"appliance_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	URL         string    `gorm:"size:1000;not null" json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&RefreshToken{},
		&Appliance{},
		&SupportContact{},
		&MaintenanceTask{},
		&LinkedDocument{},
		&SystemLog{},
	}
}
