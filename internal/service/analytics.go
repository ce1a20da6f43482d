package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	pkgerrors "github.com/pkg/errors"

	"github.com/psds-microservice/license-tracker/internal/model"
)

// TrendPoint counts Active licenses assigned in one calendar month.
type TrendPoint struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// DistributionBucket counts Active licenses sharing one detail value.
// Category is null for records where the detail path does not resolve.
type DistributionBucket struct {
	Category interface{} `json:"category"`
	Count    int         `json:"count"`
}

type AnalyticsReport struct {
	AssignmentTrends []TrendPoint         `json:"assignment_trends"`
	Distribution     []DistributionBucket `json:"distribution"`
}

// Analytics reports the monthly assignment trend of Active licenses for one
// system and, when detailPath is given, the distribution of the value found
// at that path inside the details payload. Aggregation happens in Go over
// the system's Active rows: JSON path extraction and month formatting differ
// per SQL dialect, while one code path serves Postgres and the sqlite test
// DB alike and reuses the decode-recovery rule.
func (s *LicenseService) Analytics(ctx context.Context, system model.System, detailPath ...string) (*AnalyticsReport, error) {
	var items []model.License
	err := s.db.WithContext(ctx).
		Where("system = ? AND status = ?", system, model.LicenseStatusActive).
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.WithStack(err)
	}

	trendByMonth := map[string]int{}
	for i := range items {
		trendByMonth[items[i].AssignmentDate.Format("2006-01")]++
	}
	months := make([]string, 0, len(trendByMonth))
	for m := range trendByMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	report := &AnalyticsReport{
		AssignmentTrends: make([]TrendPoint, 0, len(months)),
		Distribution:     []DistributionBucket{},
	}
	for _, m := range months {
		report.AssignmentTrends = append(report.AssignmentTrends, TrendPoint{Month: m, Count: trendByMonth[m]})
	}

	if len(detailPath) == 0 {
		return report, nil
	}

	counts := map[interface{}]int{}
	for i := range items {
		details := decodeJSONField(items[i].ID, "details_json", items[i].DetailsRaw)
		counts[bucketKey(lookupPath(details, detailPath))]++
	}
	keys := make([]interface{}, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return sortKey(keys[i]) < sortKey(keys[j]) })
	for _, k := range keys {
		report.Distribution = append(report.Distribution, DistributionBucket{Category: k, Count: counts[k]})
	}
	return report, nil
}

// lookupPath walks nested objects; nil when any step is absent or not an
// object. Records where the path resolves to nothing form their own bucket.
func lookupPath(obj map[string]interface{}, path []string) interface{} {
	var current interface{} = obj
	for _, key := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = m[key]
		if !ok {
			return nil
		}
	}
	return current
}

// bucketKey makes a resolved value usable as a map key. JSON scalars pass
// through; composite values collapse to their serialized form.
func bucketKey(v interface{}) interface{} {
	switch v.(type) {
	case nil, string, bool, float64:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

func sortKey(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
