package api

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// cronParser accepts the standard five-field cron syntax the harvest
// scheduler runs on.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// ValidateCron rejects a malformed cron expression before it reaches the
// backend. Schedule creates and updates run through this so a typo surfaces
// as an immediate local error instead of a failed deployment later.
func ValidateCron(expr string) error {
	if expr == "" {
		return fmt.Errorf("cron expression is required")
	}
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// validateScheduleData extracts and validates the cron expression of a
// schedule create/update payload. Payload shapes without a cron expression
// (partial updates) pass through.
func validateScheduleData(data any) error {
	switch v := data.(type) {
	case HarvestScheduleCreate:
		return ValidateCron(v.CronExpression)
	case *HarvestScheduleCreate:
		return ValidateCron(v.CronExpression)
	case HarvestScheduleUpdate:
		if v.CronExpression != nil {
			return ValidateCron(*v.CronExpression)
		}
	case *HarvestScheduleUpdate:
		if v.CronExpression != nil {
			return ValidateCron(*v.CronExpression)
		}
	}
	return nil
}
