package models

import (
	"fmt"
	"strings"

	"github.com/mmdatafocus/kvk_backend/utils"
)

var (
	StaffStatuses          = []string{"Permanent", "Temporary", "Contract"}
	StaffCategories        = []string{"SC", "ST", "OBC", "General"}
	InfrastructureStatuses = []string{"Not yet started", "Completed up to plinth level", "Completed up to lintel level", "Completed up to roof level", "Totally completed"}
	UnderUseOptions        = []string{"Yes", "No"}
	AssetStatuses          = []string{"Working", "Under Repair", "Out of Order", "Disposed"}
	EquipmentCategories    = []string{"Lab Equipment", "Farm Machinery", "AV Aids", "Others"}
	OftSources             = []string{"ICAR", "AICRP", "SAU", "Other"}
)

func oneOf(value string, allowed []string) bool {
	if value == "" {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

type enumCheck struct {
	field   string
	value   string
	allowed []string
}

func (c enumCheck) fieldError() utils.FieldError {
	return utils.FieldError{
		Field:   c.field,
		Message: fmt.Sprintf("%s must be one of: %s", c.field, strings.Join(c.allowed, ", ")),
	}
}

func (c *ReportContent) enumChecks() []enumCheck {
	var checks []enumCheck
	for i, s := range c.Staff {
		checks = append(checks,
			enumCheck{fmt.Sprintf("staff[%d].status", i), s.Status, StaffStatuses},
			enumCheck{fmt.Sprintf("staff[%d].category", i), s.Category, StaffCategories})
	}
	for i, s := range c.Infra {
		checks = append(checks,
			enumCheck{fmt.Sprintf("infrastructure[%d].status", i), s.Status, InfrastructureStatuses},
			enumCheck{fmt.Sprintf("infrastructure[%d].underUse", i), s.UnderUse, UnderUseOptions})
	}
	for i, v := range c.Vehicles {
		checks = append(checks, enumCheck{fmt.Sprintf("vehicles[%d].status", i), v.Status, AssetStatuses})
	}
	for i, e := range c.Equipment {
		checks = append(checks,
			enumCheck{fmt.Sprintf("equipment[%d].category", i), e.Category, EquipmentCategories},
			enumCheck{fmt.Sprintf("equipment[%d].status", i), e.Status, AssetStatuses})
	}
	for i, o := range c.OftDetails {
		checks = append(checks, enumCheck{fmt.Sprintf("oftDetails[%d].source", i), o.Source, OftSources})
	}
	return checks
}

// Validate trims the payload and checks required fields, formats and enumerations.
func (in *NewReport) Validate() error {
	in.TrimStrings()
	in.ReportDate = strings.TrimSpace(in.ReportDate)

	var fields []utils.FieldError
	if err := utils.ValidateStruct(in); err != nil {
		appErr := utils.AsAppError(err)
		if appErr.Kind != utils.KindValidation {
			return err
		}
		fields = append(fields, appErr.Errors...)
	}
	for _, c := range in.enumChecks() {
		if !oneOf(c.value, c.allowed) {
			fields = append(fields, c.fieldError())
		}
	}
	if len(fields) > 0 {
		return utils.NewValidationError("Validation failed", fields...)
	}
	return nil
}
