// services/lifecycle.go
//
// The service lifecycle manager owns the three-state workflow of a wash
// service (Received -> Completed | Cancelled) and keeps the consumable
// stock ledger consistent with recorded usage. Every transition runs as a
// single transaction: either all writes commit or none do.
package services

import (
	"encoding/json"
	"errors"
	"time"

	"washtrack-backend/models"

	"gorm.io/gorm"
)

type Lifecycle struct {
	db *gorm.DB
}

func NewLifecycle(db *gorm.DB) *Lifecycle {
	return &Lifecycle{db: db}
}

// ConsumableLine is one (consumable, quantity) debit requested at service
// creation or completion time.
type ConsumableLine struct {
	ConsumableID uint `json:"consumableId" binding:"required"`
	Quantity     int  `json:"quantity" binding:"required,min=1"`
}

// ClientInput carries the optional client/vehicle registration payload.
type ClientInput struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email"`
	Brand string `json:"brand"`
	Model string `json:"model"`
	Color string `json:"color"`
}

// ChecklistInput captures the optional vehicle-condition record at intake.
type ChecklistInput struct {
	Scratches    bool   `json:"scratches"`
	Dents        bool   `json:"dents"`
	Valuables    string `json:"valuables"`
	FuelLevel    string `json:"fuelLevel"`
	Mileage      int    `json:"mileage"`
	OtherDetails string `json:"otherDetails"`
}

type CreateServiceInput struct {
	Date          time.Time        `json:"date" binding:"required"`
	ReceivedByID  uint             `json:"receivedById" binding:"required"`
	WashedByID    uint             `json:"washedById" binding:"required"`
	VehicleTypeID uint             `json:"vehicleTypeId" binding:"required"`
	WashTypeID    uint             `json:"washTypeId" binding:"required"`
	ReceivedAt    time.Time        `json:"receivedAt" binding:"required"`
	Price         float64          `json:"price" binding:"min=0"`
	Plate         string           `json:"plate" binding:"required"`
	Notes         string           `json:"notes"`
	Client        *ClientInput     `json:"client"`
	Checklist     *ChecklistInput  `json:"checklist"`
	Consumables   []ConsumableLine `json:"consumables" binding:"omitempty,dive"`
}

func (in *CreateServiceInput) validate() *Error {
	switch {
	case in.Date.IsZero():
		return NewValidationError("date is required")
	case in.ReceivedByID == 0:
		return NewValidationError("receiving employee is required")
	case in.WashedByID == 0:
		return NewValidationError("washing employee is required")
	case in.VehicleTypeID == 0:
		return NewValidationError("vehicle type is required")
	case in.WashTypeID == 0:
		return NewValidationError("wash type is required")
	case in.ReceivedAt.IsZero():
		return NewValidationError("received time is required")
	case in.Price < 0:
		return NewValidationError("price must not be negative")
	case in.Plate == "":
		return NewValidationError("plate is required")
	}
	for _, line := range in.Consumables {
		if line.Quantity < 1 {
			return NewValidationError("consumable quantity must be at least 1")
		}
	}
	return nil
}

// Create registers a new service in status Received, lazily registers the
// client and vehicle, stores the intake checklist, and debits stock for
// every consumable line. Returns the new service ID.
func (l *Lifecycle) Create(actor string, input CreateServiceInput) (uint, error) {
	if err := input.validate(); err != nil {
		return 0, err
	}

	var serviceID uint
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, &input); err != nil {
			return err
		}

		service := models.Service{
			Date:          input.Date,
			ReceivedByID:  input.ReceivedByID,
			WashedByID:    input.WashedByID,
			VehicleTypeID: input.VehicleTypeID,
			WashTypeID:    input.WashTypeID,
			ReceivedAt:    input.ReceivedAt,
			Price:         input.Price,
			Plate:         input.Plate,
			Notes:         input.Notes,
			Status:        models.StatusReceived,
		}
		if err := tx.Create(&service).Error; err != nil {
			return NewStorageError("failed to create service", err)
		}
		serviceID = service.ID

		if input.Client != nil {
			if err := registerClientVehicle(tx, input.Client, input.Plate); err != nil {
				return err
			}
		}

		if input.Checklist != nil {
			checklist := models.Checklist{
				ServiceID:    service.ID,
				Scratches:    input.Checklist.Scratches,
				Dents:        input.Checklist.Dents,
				Valuables:    input.Checklist.Valuables,
				FuelLevel:    input.Checklist.FuelLevel,
				Mileage:      input.Checklist.Mileage,
				OtherDetails: input.Checklist.OtherDetails,
			}
			if err := tx.Create(&checklist).Error; err != nil {
				return NewStorageError("failed to create checklist", err)
			}
		}

		if err := recordUsage(tx, service.ID, input.Consumables); err != nil {
			return err
		}

		return LogActivity(tx, actor, "Create service", "services", service.ID, input)
	})
	if err != nil {
		return 0, err
	}
	return serviceID, nil
}

// Complete marks a Received service as Completed with the given delivery
// time, debiting stock for any additional consumable lines. Completing a
// service that already reached a terminal status is a conflict.
func (l *Lifecycle) Complete(actor string, serviceID uint, deliveredAt time.Time, additional []ConsumableLine) error {
	if deliveredAt.IsZero() {
		return NewValidationError("delivery time is required")
	}
	for _, line := range additional {
		if line.Quantity < 1 {
			return NewValidationError("consumable quantity must be at least 1")
		}
	}

	return l.db.Transaction(func(tx *gorm.DB) error {
		// Transition only out of Received, so concurrent completions or a
		// racing cancellation cannot both apply.
		res := tx.Model(&models.Service{}).
			Where("id = ? AND status = ?", serviceID, models.StatusReceived).
			Updates(map[string]interface{}{
				"status":       models.StatusCompleted,
				"delivered_at": deliveredAt,
			})
		if res.Error != nil {
			return NewStorageError("failed to complete service", res.Error)
		}
		if res.RowsAffected == 0 {
			return terminalStateError(tx, serviceID)
		}

		if err := recordUsage(tx, serviceID, additional); err != nil {
			return err
		}

		payload := map[string]interface{}{
			"deliveredAt":           deliveredAt,
			"additionalConsumables": additional,
		}
		return LogActivity(tx, actor, "Complete service", "services", serviceID, payload)
	})
}

// Cancel marks a Received service as Cancelled, appends the reason to its
// notes, and credits every previously recorded consumable debit back to
// stock. Completed services are immutable and cannot be cancelled.
func (l *Lifecycle) Cancel(actor string, serviceID uint, reason string) error {
	if reason == "" {
		reason = "not specified"
	}

	return l.db.Transaction(func(tx *gorm.DB) error {
		var service models.Service
		if err := tx.First(&service, serviceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("service %d not found", serviceID)
			}
			return NewStorageError("failed to load service", err)
		}

		res := tx.Model(&models.Service{}).
			Where("id = ? AND status = ?", serviceID, models.StatusReceived).
			Updates(map[string]interface{}{
				"status": models.StatusCancelled,
				"notes":  service.Notes + " | Cancellation reason: " + reason,
			})
		if res.Error != nil {
			return NewStorageError("failed to cancel service", res.Error)
		}
		if res.RowsAffected == 0 {
			return NewConflictError("cannot cancel a service in status %s", service.Status)
		}

		// Full reversal: credit back every recorded debit. Usage rows are
		// kept so the reversal stays auditable.
		var usage []models.ServiceConsumable
		if err := tx.Where("service_id = ?", serviceID).Find(&usage).Error; err != nil {
			return NewStorageError("failed to load consumable usage", err)
		}
		for _, u := range usage {
			if err := creditStock(tx, u.ConsumableID, u.Quantity); err != nil {
				return err
			}
		}

		payload := map[string]string{"reason": reason}
		return LogActivity(tx, actor, "Cancel service", "services", serviceID, payload)
	})
}

// checkReferences verifies that the employees and reference-data rows a
// new service points at actually exist.
func checkReferences(tx *gorm.DB, input *CreateServiceInput) error {
	for _, ref := range []struct {
		model interface{}
		id    uint
		name  string
	}{
		{&models.Employee{}, input.ReceivedByID, "receiving employee"},
		{&models.Employee{}, input.WashedByID, "washing employee"},
		{&models.VehicleType{}, input.VehicleTypeID, "vehicle type"},
		{&models.WashType{}, input.WashTypeID, "wash type"},
	} {
		var count int64
		if err := tx.Model(ref.model).Where("id = ?", ref.id).Count(&count).Error; err != nil {
			return NewStorageError("failed to check references", err)
		}
		if count == 0 {
			return NewNotFoundError("%s %d not found", ref.name, ref.id)
		}
	}
	return nil
}

// registerClientVehicle upserts the client by (name, phone) and links the
// plate to them if no link exists yet.
func registerClientVehicle(tx *gorm.DB, input *ClientInput, plate string) error {
	var client models.Client
	err := tx.Where("name = ? AND phone = ?", input.Name, input.Phone).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		client = models.Client{
			Name:   input.Name,
			Phone:  input.Phone,
			Email:  input.Email,
			Status: "Active",
		}
		if err := tx.Create(&client).Error; err != nil {
			return NewStorageError("failed to create client", err)
		}
	} else if err != nil {
		return NewStorageError("failed to look up client", err)
	}

	var linked int64
	if err := tx.Model(&models.ClientVehicle{}).
		Where("client_id = ? AND plate = ?", client.ID, plate).
		Count(&linked).Error; err != nil {
		return NewStorageError("failed to look up client vehicle", err)
	}
	if linked == 0 {
		vehicle := models.ClientVehicle{
			ClientID: client.ID,
			Plate:    plate,
			Brand:    input.Brand,
			Model:    input.Model,
			Color:    input.Color,
		}
		if err := tx.Create(&vehicle).Error; err != nil {
			return NewStorageError("failed to register client vehicle", err)
		}
	}
	return nil
}

// recordUsage inserts a usage row and debits stock for each line.
func recordUsage(tx *gorm.DB, serviceID uint, lines []ConsumableLine) error {
	for _, line := range lines {
		usage := models.ServiceConsumable{
			ServiceID:    serviceID,
			ConsumableID: line.ConsumableID,
			Quantity:     line.Quantity,
		}
		if err := tx.Create(&usage).Error; err != nil {
			return NewStorageError("failed to record consumable usage", err)
		}
		if err := debitStock(tx, line.ConsumableID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// debitStock decrements stock with a sufficiency guard in the statement
// itself, so stock can never go negative and concurrent debits on the
// same consumable cannot lose updates.
func debitStock(tx *gorm.DB, consumableID uint, quantity int) error {
	res := tx.Model(&models.InventoryRecord{}).
		Where("consumable_id = ? AND stock >= ?", consumableID, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return NewStorageError("failed to debit stock", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.InventoryRecord{}).
			Where("consumable_id = ?", consumableID).
			Count(&count).Error; err != nil {
			return NewStorageError("failed to check inventory", err)
		}
		if count == 0 {
			return NewNotFoundError("consumable %d not found in inventory", consumableID)
		}
		return NewConflictError("insufficient stock for consumable %d", consumableID)
	}
	return nil
}

func creditStock(tx *gorm.DB, consumableID uint, quantity int) error {
	res := tx.Model(&models.InventoryRecord{}).
		Where("consumable_id = ?", consumableID).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", quantity),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return NewStorageError("failed to credit stock", res.Error)
	}
	return nil
}

// terminalStateError reports why a guarded status update matched no rows:
// the service is either absent or already in a terminal status.
func terminalStateError(tx *gorm.DB, serviceID uint) error {
	var service models.Service
	if err := tx.First(&service, serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("service %d not found", serviceID)
		}
		return NewStorageError("failed to load service", err)
	}
	return NewConflictError("service %d is already %s", serviceID, service.Status)
}

// LogActivity appends an audit row within the caller's transaction. A
// failed audit write aborts the whole transition.
func LogActivity(tx *gorm.DB, actor, action, table string, recordID uint, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return NewStorageError("failed to serialize audit payload", err)
	}
	entry := models.ActivityLog{
		Actor:     actor,
		Action:    action,
		TableName: table,
		RecordID:  recordID,
		Payload:   string(body),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return NewStorageError("failed to write activity log", err)
	}
	return nil
}
