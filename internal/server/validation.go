package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"go-jobposting-collector/internal/filter"
	"go-jobposting-collector/internal/models"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("linkedin_job_url", func(fl validator.FieldLevel) bool {
		return filter.IsPostingURL(fl.Field().String())
	})
	return v
}

// normalizeRecord trims the text fields a reviewer may have padded.
func normalizeRecord(rec models.JobRecord) models.JobRecord {
	rec.Position = strings.TrimSpace(rec.Position)
	rec.Company = strings.TrimSpace(rec.Company)
	rec.PostingURL = strings.TrimSpace(rec.PostingURL)
	rec.City = strings.TrimSpace(rec.City)
	rec.Country = strings.TrimSpace(rec.Country)
	return rec
}

// validationMessage turns validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "linkedin_job_url":
		return field + " must be a LinkedIn job URL"
	case "eq":
		return fmt.Sprintf("%s must be %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return field + " must be a non-negative number"
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", field, fe.Tag())
	}
}
