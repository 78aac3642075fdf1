// Package validate is the advisory field-level check run on a log entry
// form before it is submitted. The per-field constraints live in one
// declarative descriptor table instead of a switch over field names, so a
// new field only needs a new table row.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"extrud-backend/internal/storage"
)

type Kind int

const (
	KindString Kind = iota
	KindInt
	KindDecimal
	KindEnum
	KindTime
	KindDate
)

// Field describes one mutable form field: its value kind and the
// validator rule string applied when a value is present.
type Field struct {
	Kind Kind
	Rule string
}

// Fields is the descriptor table for every mutable log field.
var Fields = map[string]Field{
	"date":               {KindDate, "datetime=2006-01-02"},
	"dieCode":            {KindString, ""},
	"subNumber":          {KindInt, "gte=0"},
	"billetType":         {KindString, ""},
	"billetLength":       {KindDecimal, "gte=0"},
	"billetQuantity":     {KindInt, "gte=0"},
	"ingotRatio":         {KindDecimal, "gte=0"},
	"lotNumberCode":      {KindString, ""},
	"ramSpeed":           {KindDecimal, "gte=0"},
	"dieTemp":            {KindDecimal, "gte=0"},
	"billetTemp":         {KindDecimal, "gte=0"},
	"containerTemp":      {KindDecimal, "gte=0"},
	"outputTemp":         {KindDecimal, "gte=0"},
	"pressure":           {KindDecimal, "gte=0"},
	"pullerMode":         {KindString, ""},
	"pullerSpeed":        {KindDecimal, "gte=0"},
	"pullerForce":        {KindDecimal, "gte=0"},
	"extrusionCycle":     {KindInt, "gte=0"},
	"extrusionLength":    {KindDecimal, "gte=0"},
	"orderLength":        {KindDecimal, "gte=0"},
	"segments":           {KindInt, "gte=0"},
	"coolingMethod":      {KindString, ""},
	"coolingMode":        {KindString, ""},
	"startButt":          {KindDecimal, "gte=0"},
	"beforeSewing":       {KindDecimal, "gte=0"},
	"afterSewing":        {KindDecimal, "gte=0"},
	"endButt":            {KindDecimal, "gte=0"},
	"startTime":          {KindTime, "datetime=15:04"},
	"endTime":            {KindTime, "datetime=15:04"},
	"productionQuantity": {KindInt, "gte=0"},
	"result":             {KindEnum, "oneof=OK NG"},
	"remark":             {KindString, ""},
	"ngQuantity":         {KindInt, "gte=0"},
	"buttLength":         {KindDecimal, "gte=0"},
	"customer":           {KindString, ""},
	"item":               {KindString, ""},
	"code":               {KindString, ""},
}

// shiftEndCutoff is 07:00 in minutes since midnight. An end time earlier
// than the cutoff is read as the morning after a shift that crossed
// midnight.
const shiftEndCutoff = 7 * 60

// Errors maps a field id to its first validation message.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

var vld = validator.New()

// Validate checks every supplied field against the descriptor table plus
// the one cross-field rule relating start and end times. A nil result
// means the entry may be submitted.
func Validate(v storage.LogValues) Errors {
	errs := Errors{}

	for _, f := range v.Fields() {
		if f.Value == nil {
			continue
		}
		desc, ok := Fields[f.ID]
		if !ok || desc.Rule == "" {
			continue
		}
		if err := vld.Var(f.Value, desc.Rule); err != nil {
			errs[f.ID] = ruleMessage(desc)
		}
	}

	if v.StartTime != nil && v.EndTime != nil {
		if _, bad := errs["startTime"]; !bad {
			if _, bad := errs["endTime"]; !bad {
				if err := CheckShiftTimes(*v.StartTime, *v.EndTime); err != nil {
					errs["endTime"] = err.Error()
				}
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CheckShiftTimes enforces the cross-field rule: the end time must be
// later than the start time on the same day, or — for a shift wrapping
// past midnight — fall before the 07:00 cutoff of the following morning.
func CheckShiftTimes(start, end string) error {
	startMin, err := storage.MinutesOfDay(start)
	if err != nil {
		return err
	}
	endMin, err := storage.MinutesOfDay(end)
	if err != nil {
		return err
	}

	if endMin >= shiftEndCutoff && endMin <= startMin {
		return fmt.Errorf("end time %s is not after start time %s", end, start)
	}

	return nil
}

func ruleMessage(f Field) string {
	switch f.Kind {
	case KindInt:
		return "must be a non-negative whole number"
	case KindDecimal:
		return "must be a non-negative number"
	case KindEnum:
		return "must be OK or NG"
	case KindTime:
		return "must be a time like 14:30"
	case KindDate:
		return "must be a date like 2025-01-31"
	default:
		return "invalid value"
	}
}
