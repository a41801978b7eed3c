package usecase

import (
	"sort"

	"tour-marketplace/internal/domain"
	"tour-marketplace/pkg/utils"

	"github.com/google/uuid"
)

// validate runs struct validation and turns failures into a domain
// validation error naming every offending field.
func validate(req any) error {
	errs := utils.ValidateStruct(req)
	if len(errs) == 0 {
		return nil
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	return domain.New(domain.KindValidation, utils.FormatValidationErrors(errs), fields...)
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, domain.New(domain.KindValidation, "must be a valid UUID", field)
	}
	return id, nil
}

func notFound(what, id string) error {
	return domain.Newf(domain.KindNotFound, "%s %s not found", what, id)
}
