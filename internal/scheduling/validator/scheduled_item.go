package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"darassa/pkg/logger"
	"darassa/pkg/model"

	"github.com/go-playground/validator/v10"
)

const tagTimeOrder = "time_order"

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Fields maps each offending field to its message, for error details.
func (v ValidationErrors) Fields() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return fields
}

type ScheduledItemValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewScheduledItemValidator(log *logger.Logger) *ScheduledItemValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterStructValidation(validateItemTimeOrder, model.ScheduledItem{})
	v.RegisterStructValidation(validateQueryTimeOrder, model.AvailabilityQuery{})

	log.Info("Scheduled item validator initialized successfully")

	return &ScheduledItemValidator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func validateItemTimeOrder(sl validator.StructLevel) {
	item := sl.Current().Interface().(model.ScheduledItem)
	if item.StartTime.IsZero() || item.EndTime.IsZero() {
		return
	}
	if !item.StartTime.Before(item.EndTime) {
		sl.ReportError(item.EndTime, "end_time", "EndTime", tagTimeOrder, "start_time")
	}
}

func validateQueryTimeOrder(sl validator.StructLevel) {
	q := sl.Current().Interface().(model.AvailabilityQuery)
	if q.StartTime.IsZero() || q.EndTime.IsZero() {
		return
	}
	if !q.StartTime.Before(q.EndTime) {
		sl.ReportError(q.EndTime, "endDate", "EndTime", tagTimeOrder, "startDate")
	}
}

func (v *ScheduledItemValidator) Validate(item *model.ScheduledItem) error {
	return v.check(item)
}

func (v *ScheduledItemValidator) ValidateAvailabilityQuery(q *model.AvailabilityQuery) error {
	return v.check(q)
}

func (v *ScheduledItemValidator) ValidateUpdate(update *model.ScheduledItemUpdate) error {
	if err := v.check(update); err != nil {
		return err
	}

	if update.StartTime != nil && update.EndTime != nil && !update.StartTime.Before(*update.EndTime) {
		return ValidationErrors{
			ValidationError{
				Field:   "end_time",
				Message: "end_time must be after start_time",
			},
		}
	}
	if update.RoomID != nil && *update.RoomID != "" {
		if err := v.validate.Var(*update.RoomID, "mongodb"); err != nil {
			return ValidationErrors{
				ValidationError{
					Field:   "room_id",
					Message: "room_id must be a valid MongoDB ObjectID",
				},
			}
		}
	}

	return nil
}

func (v *ScheduledItemValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ScheduledItemValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "timezone":
			message = fmt.Sprintf("%s must be an IANA time zone", err.Field())
		case tagTimeOrder:
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
