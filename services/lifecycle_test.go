package services

import (
	"testing"
	"time"

	"washtrack-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// In-memory SQLite is per connection, so keep the pool at one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Employee{},
		&models.WorkSchedule{},
		&models.Shift{},
		&models.VehicleType{},
		&models.WashType{},
		&models.ConsumableType{},
		&models.Consumable{},
		&models.InventoryRecord{},
		&models.Client{},
		&models.ClientVehicle{},
		&models.Service{},
		&models.ServiceConsumable{},
		&models.Checklist{},
		&models.ActivityLog{},
	))
	return db
}

type fixture struct {
	receiver    models.Employee
	washer      models.Employee
	vehicleType models.VehicleType
	washType    models.WashType
	consumable  models.Consumable
	inventory   models.InventoryRecord
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	f := fixture{
		receiver:    models.Employee{Code: "EMP-001", FirstName: "Ana", LastName: "Reyes", Status: "Active"},
		washer:      models.Employee{Code: "EMP-002", FirstName: "Luis", LastName: "Mora", Status: "Active"},
		vehicleType: models.VehicleType{Kind: "Sedan", Size: "Medium", Status: "Active"},
		washType:    models.WashType{Name: "Full wash", Cost: 25, Status: "Active"},
	}
	require.NoError(t, db.Create(&f.receiver).Error)
	require.NoError(t, db.Create(&f.washer).Error)
	require.NoError(t, db.Create(&f.vehicleType).Error)
	require.NoError(t, db.Create(&f.washType).Error)

	ctype := models.ConsumableType{Name: "Soap"}
	require.NoError(t, db.Create(&ctype).Error)
	f.consumable = models.Consumable{Name: "Car shampoo", UnitPrice: 3.5, ConsumableTypeID: ctype.ID, Status: "Active"}
	require.NoError(t, db.Create(&f.consumable).Error)
	f.inventory = models.InventoryRecord{ConsumableID: f.consumable.ID, Stock: 10, MinThreshold: 3}
	require.NoError(t, db.Create(&f.inventory).Error)

	return f
}

func (f fixture) createInput() CreateServiceInput {
	return CreateServiceInput{
		Date:          time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		ReceivedByID:  f.receiver.ID,
		WashedByID:    f.washer.ID,
		VehicleTypeID: f.vehicleType.ID,
		WashTypeID:    f.washType.ID,
		ReceivedAt:    time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
		Price:         25,
		Plate:         "ABC123",
		Consumables:   []ConsumableLine{{ConsumableID: f.consumable.ID, Quantity: 2}},
	}
}

func currentStock(t *testing.T, db *gorm.DB, consumableID uint) int {
	t.Helper()
	var record models.InventoryRecord
	require.NoError(t, db.Where("consumable_id = ?", consumableID).First(&record).Error)
	return record.Stock
}

func TestCreateServiceDebitsStock(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	id, err := lc.Create("ana", f.createInput())
	require.NoError(t, err)
	require.NotZero(t, id)

	var service models.Service
	require.NoError(t, db.First(&service, id).Error)
	assert.Equal(t, models.StatusReceived, service.Status)
	assert.Equal(t, "ABC123", service.Plate)
	assert.Nil(t, service.DeliveredAt)

	assert.Equal(t, 8, currentStock(t, db, f.consumable.ID))

	var usage []models.ServiceConsumable
	require.NoError(t, db.Where("service_id = ?", id).Find(&usage).Error)
	require.Len(t, usage, 1)
	assert.Equal(t, 2, usage[0].Quantity)
}

func TestCreateServiceInsufficientStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	input := f.createInput()
	input.Consumables = []ConsumableLine{{ConsumableID: f.consumable.ID, Quantity: 11}}

	_, err := lc.Create("ana", input)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	// Nothing committed: no service, no usage, no audit, stock untouched.
	var services, usage, logs int64
	db.Model(&models.Service{}).Count(&services)
	db.Model(&models.ServiceConsumable{}).Count(&usage)
	db.Model(&models.ActivityLog{}).Count(&logs)
	assert.Zero(t, services)
	assert.Zero(t, usage)
	assert.Zero(t, logs)
	assert.Equal(t, 10, currentStock(t, db, f.consumable.ID))
}

func TestCreateServiceUnknownConsumable(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	input := f.createInput()
	input.Consumables = []ConsumableLine{{ConsumableID: 999, Quantity: 1}}

	_, err := lc.Create("ana", input)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateServiceUnknownEmployee(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	input := f.createInput()
	input.WashedByID = 999

	_, err := lc.Create("ana", input)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	var services int64
	db.Model(&models.Service{}).Count(&services)
	assert.Zero(t, services)
}

func TestCreateServiceValidation(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	input := f.createInput()
	input.Plate = ""

	_, err := lc.Create("ana", input)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	input = f.createInput()
	input.Consumables[0].Quantity = 0
	_, err = lc.Create("ana", input)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCompleteServiceKeepsStock(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	id, err := lc.Create("ana", f.createInput())
	require.NoError(t, err)

	deliveredAt := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	require.NoError(t, lc.Complete("ana", id, deliveredAt, nil))

	var service models.Service
	require.NoError(t, db.First(&service, id).Error)
	assert.Equal(t, models.StatusCompleted, service.Status)
	require.NotNil(t, service.DeliveredAt)
	assert.True(t, service.DeliveredAt.Equal(deliveredAt))

	// Completion confirms the debit, it does not repeat it.
	assert.Equal(t, 8, currentStock(t, db, f.consumable.ID))
}

func TestCompleteServiceWithAdditionalConsumables(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	id, err := lc.Create("ana", f.createInput())
	require.NoError(t, err)

	additional := []ConsumableLine{{ConsumableID: f.consumable.ID, Quantity: 3}}
	require.NoError(t, lc.Complete("ana", id, time.Now(), additional))

	assert.Equal(t, 5, currentStock(t, db, f.consumable.ID))

	var usage []models.ServiceConsumable
	require.NoError(t, db.Where("service_id = ?", id).Find(&usage).Error)
	assert.Len(t, usage, 2)
}

func TestCompleteServiceTwiceConflicts(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	id, err := lc.Create("ana", f.createInput())
	require.NoError(t, err)
	require.NoError(t, lc.Complete("ana", id, time.Now(), nil))

	err = lc.Complete("ana", id, time.Now(), nil)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestCompleteUnknownService(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)
	lc := NewLifecycle(db)

	err := lc.Complete("ana", 42, time.Now(), nil)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCancelServiceRestoresStock(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	id, err := lc.Create("ana", f.createInput())
	require.NoError(t, err)
	assert.Equal(t, 8, currentStock(t, db, f.consumable.ID))

	require.NoError(t, lc.Cancel("ana", id, "client left"))

	var service models.Service
	require.NoError(t, db.First(&service, id).Error)
	assert.Equal(t, models.StatusCancelled, service.Status)
	assert.Contains(t, service.Notes, "Cancellation reason: client left")

	assert.Equal(t, 10, currentStock(t, db, f.consumable.ID))

	// Usage rows survive cancellation for auditing.
	var usage int64
	db.Model(&models.ServiceConsumable{}).Where("service_id = ?", id).Count(&usage)
	assert.EqualValues(t, 1, usage)

	// Cancelled is terminal: no late completion.
	err = lc.Complete("ana", id, time.Now(), nil)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestCancelWithoutReasonUsesDefault(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	id, err := lc.Create("ana", f.createInput())
	require.NoError(t, err)
	require.NoError(t, lc.Cancel("ana", id, ""))

	var service models.Service
	require.NoError(t, db.First(&service, id).Error)
	assert.Contains(t, service.Notes, "Cancellation reason: not specified")
}

func TestCancelCompletedServiceConflicts(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	id, err := lc.Create("ana", f.createInput())
	require.NoError(t, err)
	require.NoError(t, lc.Complete("ana", id, time.Now(), nil))

	err = lc.Cancel("ana", id, "too late")
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	// Completed services keep their debit.
	assert.Equal(t, 8, currentStock(t, db, f.consumable.ID))
}

func TestCancelUnknownService(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)
	lc := NewLifecycle(db)

	err := lc.Cancel("ana", 42, "whatever")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateServiceRegistersClientOnce(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	input := f.createInput()
	input.Client = &ClientInput{Name: "Carlos Pena", Phone: "555-0101", Brand: "Toyota", Model: "Corolla"}
	_, err := lc.Create("ana", input)
	require.NoError(t, err)

	// Same client, second vehicle.
	input2 := f.createInput()
	input2.Plate = "XYZ789"
	input2.Consumables = nil
	input2.Client = &ClientInput{Name: "Carlos Pena", Phone: "555-0101", Brand: "Honda", Model: "Civic"}
	_, err = lc.Create("ana", input2)
	require.NoError(t, err)

	// Same client, same plate again: no duplicate link.
	input3 := f.createInput()
	input3.Consumables = nil
	input3.Client = &ClientInput{Name: "Carlos Pena", Phone: "555-0101"}
	_, err = lc.Create("ana", input3)
	require.NoError(t, err)

	var clients, vehicles int64
	db.Model(&models.Client{}).Count(&clients)
	db.Model(&models.ClientVehicle{}).Count(&vehicles)
	assert.EqualValues(t, 1, clients)
	assert.EqualValues(t, 2, vehicles)
}

func TestCreateServiceStoresChecklist(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	input := f.createInput()
	input.Checklist = &ChecklistInput{Scratches: true, FuelLevel: "3/4", Mileage: 48200, Valuables: "sunglasses"}
	id, err := lc.Create("ana", input)
	require.NoError(t, err)

	var checklist models.Checklist
	require.NoError(t, db.Where("service_id = ?", id).First(&checklist).Error)
	assert.True(t, checklist.Scratches)
	assert.False(t, checklist.Dents)
	assert.Equal(t, "3/4", checklist.FuelLevel)
	assert.Equal(t, 48200, checklist.Mileage)
}

func TestLifecycleWritesAuditTrail(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	lc := NewLifecycle(db)

	id, err := lc.Create("ana", f.createInput())
	require.NoError(t, err)
	require.NoError(t, lc.Cancel("luis", id, "rain"))

	var logs []models.ActivityLog
	require.NoError(t, db.Order("created_at").Find(&logs).Error)
	require.Len(t, logs, 2)

	assert.Equal(t, "ana", logs[0].Actor)
	assert.Equal(t, "Create service", logs[0].Action)
	assert.Equal(t, "services", logs[0].TableName)
	assert.Equal(t, id, logs[0].RecordID)
	assert.Contains(t, logs[0].Payload, "ABC123")

	assert.Equal(t, "luis", logs[1].Actor)
	assert.Equal(t, "Cancel service", logs[1].Action)
	assert.Contains(t, logs[1].Payload, "rain")
}

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(NewValidationError("bad input")))
	assert.Equal(t, KindNotFound, KindOf(NewNotFoundError("missing %d", 1)))
	assert.Equal(t, KindConflict, KindOf(NewConflictError("busy")))
	assert.Equal(t, KindStorage, KindOf(NewStorageError("db", assert.AnError)))
	assert.Equal(t, KindUnknown, KindOf(assert.AnError))
	assert.Equal(t, KindUnknown, KindOf(nil))
}
