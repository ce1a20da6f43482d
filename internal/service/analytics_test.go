package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psds-microservice/license-tracker/internal/model"
)

func TestAnalyticsEmptySystem(t *testing.T) {
	svc := NewLicenseService(openTestDB(t))

	report, err := svc.Analytics(context.Background(), model.SystemLSQ, "lsq", "licenseType")
	require.NoError(t, err)
	assert.Equal(t, []TrendPoint{}, report.AssignmentTrends)
	assert.Equal(t, []DistributionBucket{}, report.Distribution)
}

func TestAnalyticsMonthlyTrendAscendingNoGapFill(t *testing.T) {
	svc := NewLicenseService(openTestDB(t))
	ctx := context.Background()

	mk := func(system model.System, status model.LicenseStatus, d model.Date) {
		in := validCreateInput()
		in.System = system
		in.Status = status
		in.AssignmentDate = datePtr(d)
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}
	mk(model.SystemDMS, model.LicenseStatusActive, model.NewDate(2024, 1, 5))
	mk(model.SystemDMS, model.LicenseStatusActive, model.NewDate(2024, 1, 20))
	mk(model.SystemDMS, model.LicenseStatusActive, model.NewDate(2024, 3, 2))
	// Inactive and foreign-system records do not count.
	mk(model.SystemDMS, model.LicenseStatusInactive, model.NewDate(2024, 2, 1))
	mk(model.SystemLSQ, model.LicenseStatusActive, model.NewDate(2024, 2, 1))

	report, err := svc.Analytics(ctx, model.SystemDMS)
	require.NoError(t, err)
	assert.Equal(t, []TrendPoint{
		{Month: "2024-01", Count: 2},
		{Month: "2024-03", Count: 1},
	}, report.AssignmentTrends)
	assert.Empty(t, report.Distribution)
}

func TestAnalyticsDistributionGroupsByDetailPath(t *testing.T) {
	svc := NewLicenseService(openTestDB(t))
	ctx := context.Background()

	mk := func(dealer string) {
		in := validCreateInput()
		if dealer != "" {
			in.Details = map[string]interface{}{
				"dms": map[string]interface{}{"dealerName": dealer},
			}
		}
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}
	mk("Kumar Motors")
	mk("Kumar Motors")
	mk("Desai Autos")
	mk("") // path does not resolve: its own null bucket

	report, err := svc.Analytics(ctx, model.SystemDMS, "dms", "dealerName")
	require.NoError(t, err)

	want := map[interface{}]int{
		"Kumar Motors": 2,
		"Desai Autos":  1,
		nil:            1,
	}
	got := map[interface{}]int{}
	for _, b := range report.Distribution {
		got[b.Category] = b.Count
	}
	assert.Equal(t, want, got)
}
