package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"catalog-admin/internal/domain"
	"catalog-admin/internal/view"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var fieldLabels = map[string]string{
	"name":        "Name",
	"description": "Description",
	"price":       "Price",
	"stock":       "Stock",
	"category":    "Category",
}

// newFormValidator reports field errors under the draft's json names.
func newFormValidator() *validator.Validate {
	return domain.NewValidator()
}

// parseForm turns raw form values into a draft. Field errors are keyed by the
// draft's json field names; a non-empty map means the draft must not be sent.
func parseForm(v *validator.Validate, values view.FormValues) (domain.ProductDraft, map[string]string) {
	fieldErrs := make(map[string]string)
	draft := domain.ProductDraft{
		Name:        values.Name,
		Description: values.Description,
		Category:    values.Category,
	}

	if raw := strings.TrimSpace(values.Price); raw == "" {
		fieldErrs["price"] = "Price is required"
	} else if price, err := decimal.NewFromString(raw); err != nil {
		fieldErrs["price"] = "Price must be a number"
	} else {
		draft.Price = price
	}

	if raw := strings.TrimSpace(values.Stock); raw == "" {
		fieldErrs["stock"] = "Stock is required"
	} else if stock, err := strconv.Atoi(raw); err != nil {
		fieldErrs["stock"] = "Stock must be a whole number"
	} else {
		draft.Stock = stock
	}

	if err := v.Struct(draft); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			fieldErrs["form"] = err.Error()
			return draft, fieldErrs
		}
		for _, fe := range verrs {
			if _, seen := fieldErrs[fe.Field()]; seen {
				continue
			}
			fieldErrs[fe.Field()] = fieldMessage(fe)
		}
	}
	return draft, fieldErrs
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "gte":
		return label + " cannot be negative"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	default:
		return label + " is invalid"
	}
}
