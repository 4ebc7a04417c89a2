package world

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Description validation error codes (E200-E299)
const (
	ErrFieldRequired      = "E201" // required field missing or empty
	ErrFieldInvalid       = "E202" // value fails a tag constraint
	ErrBadSavewarp        = "E203" // savewarp is not "<region> -> <target>"
	ErrBadExitName        = "E204" // entrance name is not "<parent> -> <target>"
	ErrUnknownExitTarget  = "E205" // exit points at a region no file defines
	ErrDungeonMismatch    = "E206" // dungeon region tagged with another dungeon
	ErrUnknownVanillaItem = "E207" // location table names an unknown item
	ErrUnknownTableEntry  = "E208" // entrance table names an unknown exit
)

// ValidationError reports a problem with a world description.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var descValidate *validator.Validate

func init() {
	descValidate = validator.New()
	_ = descValidate.RegisterValidation("savewarp", validateExitName)
	_ = descValidate.RegisterValidation("exitname", validateExitName)
}

func validateExitName(fl validator.FieldLevel) bool {
	parent, target, ok := strings.Cut(fl.Field().String(), " -> ")
	return ok && parent != "" && target != ""
}

// Validate checks a description without building it.
// Returns all errors found (does not fail-fast).
func Validate(desc *Description) []ValidationError {
	var errs []ValidationError

	if err := descValidate.Struct(desc); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []ValidationError{{Field: "description", Message: err.Error(), Code: ErrFieldInvalid}}
		}
		for _, fe := range verrs {
			errs = append(errs, fromFieldError(fe))
		}
	}

	known := make(map[string]bool)
	exits := make(map[string]bool)
	collect := func(regions []RegionDesc) {
		for _, r := range regions {
			known[r.Name] = true
			for _, e := range r.Exits {
				exits[r.Name+" -> "+e.Name] = true
			}
		}
	}
	collect(desc.Regions)
	for _, d := range desc.Dungeons {
		collect(d.Vanilla)
		collect(d.MQ)
	}

	checkTargets := func(field string, regions []RegionDesc) {
		for i, r := range regions {
			for j, e := range r.Exits {
				if !known[e.Name] {
					errs = append(errs, ValidationError{
						Field:   fmt.Sprintf("%s[%d].exits[%d]", field, i, j),
						Message: fmt.Sprintf("exit %q -> %q targets an undefined region", r.Name, e.Name),
						Code:    ErrUnknownExitTarget,
					})
				}
			}
		}
	}
	checkTargets("regions", desc.Regions)
	for di, d := range desc.Dungeons {
		for _, v := range []struct {
			name    string
			regions []RegionDesc
		}{{"vanilla", d.Vanilla}, {"mq", d.MQ}} {
			field, regions := fmt.Sprintf("dungeons[%d].%s", di, v.name), v.regions
			checkTargets(field, regions)
			for i, r := range regions {
				if r.Dungeon != "" && r.Dungeon != d.Name {
					errs = append(errs, ValidationError{
						Field:   fmt.Sprintf("%s[%d].dungeon", field, i),
						Message: fmt.Sprintf("region %q is tagged %q inside dungeon %q", r.Name, r.Dungeon, d.Name),
						Code:    ErrDungeonMismatch,
					})
				}
			}
		}
	}

	items := make(map[string]bool, len(desc.Items))
	for _, it := range desc.Items {
		items[it.Name] = true
	}
	for i, l := range desc.Locations {
		if l.VanillaItem != "" && !items[l.VanillaItem] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("locations[%d].vanilla_item", i),
				Message: fmt.Sprintf("unknown item %q", l.VanillaItem),
				Code:    ErrUnknownVanillaItem,
			})
		}
	}
	for i, e := range desc.Entrances {
		for _, f := range [2][2]string{{"forward", e.Forward}, {"return", e.Return}} {
			field, name := f[0], f[1]
			if name != "" && !exits[name] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("entrances[%d].%s", i, field),
					Message: fmt.Sprintf("no exit named %q", name),
					Code:    ErrUnknownTableEntry,
				})
			}
		}
	}
	return errs
}

func fromFieldError(fe validator.FieldError) ValidationError {
	field := strings.TrimPrefix(fe.Namespace(), "Description.")
	switch fe.Tag() {
	case "required", "min":
		return ValidationError{Field: field, Message: "is required", Code: ErrFieldRequired}
	case "savewarp":
		return ValidationError{Field: field, Message: fmt.Sprintf("savewarp %q must be \"<region> -> <target>\"", fe.Value()), Code: ErrBadSavewarp}
	case "exitname":
		return ValidationError{Field: field, Message: fmt.Sprintf("entrance %q must be \"<parent> -> <target>\"", fe.Value()), Code: ErrBadExitName}
	}
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("failed %q constraint (value %v)", fe.Tag(), fe.Value()),
		Code:    ErrFieldInvalid,
	}
}
