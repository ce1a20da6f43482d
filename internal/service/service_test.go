package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/psds-microservice/license-tracker/internal/model"
)

// openTestDB returns an isolated in-memory sqlite database migrated to the
// service schema. cache=shared keeps the database alive across the pooled
// connections gorm opens.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.License{}, &model.Ticket{}, &model.User{}))
	return db
}

func datePtr(d model.Date) *model.Date { return &d }

func strPtr(s string) *string { return &s }

// validCreateInput returns a minimal valid Create input; tests mutate it.
func validCreateInput() CreateLicenseInput {
	return CreateLicenseInput{
		TicketID:       "TCK-1001",
		System:         model.SystemDMS,
		Name:           "Ravi Kumar",
		Mobile:         "9876543210",
		Email:          "ravi.kumar@example.com",
		AssignmentDate: datePtr(model.NewDate(2024, 3, 5)),
		RequestedDate:  datePtr(model.NewDate(2024, 3, 1)),
		RequestorName:  "Priya Sharma",
	}
}
