// services/stock_alerts.go
package services

import (
	"fmt"
	"log"
	"os"
	"strings"

	"washtrack-backend/models"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// StockAlertService watches the inventory ledger and notifies the shop
// manager when consumables fall below their minimum threshold.
type StockAlertService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewStockAlertService(db *gorm.DB) *StockAlertService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &StockAlertService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *StockAlertService) StartScheduler() {
	c := cron.New()

	// Check every morning at 8 AM
	c.AddFunc("0 8 * * *", func() {
		s.CheckLowStock()
	})

	c.Start()
	log.Println("Low-stock alert scheduler started")
}

type lowStockRow struct {
	Name         string
	Stock        int
	MinThreshold int
}

// CheckLowStock finds every active consumable below threshold, logs each
// one, and sends a single summary SMS when a target number is configured.
func (s *StockAlertService) CheckLowStock() {
	log.Println("Running low-stock inventory check...")

	var rows []lowStockRow
	err := s.db.Model(&models.InventoryRecord{}).
		Select("consumables.name, inventory_records.stock, inventory_records.min_threshold").
		Joins("JOIN consumables ON consumables.id = inventory_records.consumable_id").
		Where("inventory_records.stock < inventory_records.min_threshold AND consumables.status = ?", "Active").
		Order("inventory_records.stock").
		Scan(&rows).Error
	if err != nil {
		log.Printf("Low-stock check failed: %v", err)
		return
	}

	if len(rows) == 0 {
		log.Println("Low-stock check complete: all consumables above threshold")
		return
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		log.Printf("LOW STOCK: %s at %d (threshold %d)", r.Name, r.Stock, r.MinThreshold)
		lines = append(lines, fmt.Sprintf("%s: %d/%d", r.Name, r.Stock, r.MinThreshold))
	}

	s.sendAlert(fmt.Sprintf("Wash shop low stock (%d items): %s",
		len(rows), strings.Join(lines, ", ")))
}

func (s *StockAlertService) sendAlert(message string) {
	to := os.Getenv("ALERT_PHONE_NUMBER")
	from := os.Getenv("TWILIO_PHONE_NUMBER")
	if to == "" || from == "" {
		log.Println("Alert phone numbers not configured, skipping SMS")
		return
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(message)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		log.Printf("Failed to send low-stock SMS: %v", err)
		return
	}
	log.Println("Low-stock SMS alert sent")
}
