package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names, e.g. "client_info.name".
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// PartyInput is a business or client block as entered by a user.
type PartyInput struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
}

func (p PartyInput) party() models.Party {
	return models.Party{
		Name:    strings.TrimSpace(p.Name),
		Address: strings.TrimSpace(p.Address),
		Phone:   strings.TrimSpace(p.Phone),
		Email:   strings.TrimSpace(p.Email),
	}
}

// ItemInput is one line item as entered by a user.
type ItemInput struct {
	Description string  `json:"description" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

// CreateInput carries every field a front end collects for a new invoice.
// Discount above 100 is accepted and yields a negative total.
type CreateInput struct {
	Business      PartyInput  `json:"business_info"`
	Client        PartyInput  `json:"client_info"`
	InvoiceNumber string      `json:"invoice_number" validate:"required"`
	InvoiceDate   string      `json:"invoice_date" validate:"omitempty,datetime=2006-01-02"`
	Items         []ItemInput `json:"items" validate:"dive"`
	TaxRate       float64     `json:"tax_rate" validate:"gte=0"`
	DiscountRate  float64     `json:"discount" validate:"gte=0"`
	PaymentTerms  string      `json:"payment_terms"`
}

// Validate checks in field by field and returns every problem at once.
func (in *CreateInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("input", "%v", err)
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fieldError(fe))
	}
	return errors.Join(errs...)
}

func fieldError(fe validator.FieldError) error {
	// Namespace is "CreateInput.client_info.name"; drop the type name.
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return apperr.Validation(field, "is required")
	case "email":
		return apperr.Validation(field, "must be a valid email address")
	case "gt":
		return apperr.Validation(field, "must be greater than %s", fe.Param())
	case "gte":
		return apperr.Validation(field, "must not be less than %s", fe.Param())
	case "datetime":
		return apperr.Validation(field, "must be a date like %s", models.DateLayout)
	default:
		return apperr.Validation(field, "failed %q check", fe.Tag())
	}
}

// Build validates in and returns the finalized invoice snapshot.
func (in *CreateInput) Build(opts ...models.Option) (*models.Snapshot, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var date models.Date
	if in.InvoiceDate != "" {
		d, err := models.ParseDate(in.InvoiceDate)
		if err != nil {
			return nil, apperr.Validation("invoice_date", "%v", err)
		}
		date = d
	}

	inv := models.NewInvoice(opts...)
	inv.SetBusinessInfo(in.Business.party())
	inv.SetClientInfo(in.Client.party())
	if err := inv.SetInvoiceDetails(models.Details{
		Number:       in.InvoiceNumber,
		Date:         date,
		TaxRate:      in.TaxRate,
		DiscountRate: in.DiscountRate,
		PaymentTerms: strings.TrimSpace(in.PaymentTerms),
	}); err != nil {
		return nil, err
	}
	for _, item := range in.Items {
		if err := inv.AddItem(strings.TrimSpace(item.Description), item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}
	return inv.Finalize()
}
