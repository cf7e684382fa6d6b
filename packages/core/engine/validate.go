package engine

import (
	Error "entiq/packages/common/errors"
	"entiq/packages/core/compare"
	"entiq/packages/core/entity"
	"entiq/packages/core/meta"
)

// ValidateRecord checks a write payload against entity metadata.
// Pure function over plain data, no schema objects with behavior.
//
// With requireAll set (creates), every required field must be present
// and non-empty. Updates validate only the fields they touch.
func ValidateRecord(ent *meta.EntityDescriptor, record entity.Record, requireAll bool) []*Error.Status {
	var errors []*Error.Status

	if requireAll {
		for i := range ent.Fields {
			fd := &ent.Fields[i]
			if !fd.IsRequired {
				continue
			}

			value, present := record[fd.Name]
			if !present || value == nil || value == "" {
				errors = append(errors, Error.NewFieldError(
					Error.ValidationFailed,
					fd.Name,
					"Field "+fd.Name+" is required",
				))
			}
		}
	}

	for name, value := range record {
		if name == entity.IDField {
			continue
		}

		fd, ok := ent.Field(name)
		if !ok {
			errors = append(errors, Error.NewFieldError(
				Error.ValidationFailed,
				name,
				"Unknown field: "+name,
			))
			continue
		}

		if value == nil {
			continue
		}

		if err := validateFieldValue(fd, value); err != nil {
			errors = append(errors, err)
		}
	}

	return errors
}

func validateFieldValue(fd *meta.FieldDescriptor, value any) *Error.Status {
	if fd.IsEnum {
		s, ok := value.(string)
		if !ok || !fd.EnumContains(s) {
			return Error.NewFieldError(
				Error.ValidationFailed,
				fd.Name,
				"Invalid value for enum field "+fd.Name,
			)
		}
		return nil
	}

	var kind compare.Kind

	switch fd.Type {
	case meta.TypeNumber:
		kind = compare.KindNumber
	case meta.TypeBoolean:
		kind = compare.KindBoolean
	case meta.TypeDate:
		kind = compare.KindDate
	default:
		return nil
	}

	if !compare.Coerces(kind, value) {
		return Error.NewFieldError(
			Error.ValidationFailed,
			fd.Name,
			"Invalid value for "+string(fd.Type)+" field "+fd.Name,
		)
	}

	return nil
}
