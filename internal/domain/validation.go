package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxProductNameLength matches the width of products.name.
const MaxProductNameLength = 256

type Validation struct {
	validator *validator.Validate
}

func NewValidation() *Validation {
	v := validator.New()
	mustRegisterValidation(v, "price", validatePrice)

	// report form field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validation{validator: v}
}

// mustRegisterValidation panics if tag cannot be registered.
func mustRegisterValidation(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

func validatePrice(fl validator.FieldLevel) bool {
	_, err := ParsePrice(fl.Field().String())
	return err == nil
}

// ValidationError wraps the validator's FieldError
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (v ValidationError) Error() string {
	return fmt.Sprintf("Field '%s': %s", v.Field, v.Message)
}

// ValidationErrors is a slice of ValidationError
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, v := range ve {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "; ")
}

// Errors converts the slice to a slice of strings
func (ve ValidationErrors) Errors() []string {
	errs := make([]string, 0, len(ve))
	for _, v := range ve {
		errs = append(errs, v.Error())
	}
	return errs
}

type createProductRules struct {
	Name  string `form:"name" validate:"required,max=256"`
	Price string `form:"price" validate:"required,price"`
}

type updateProductRules struct {
	Name  string `form:"name" validate:"omitempty,max=256"`
	Price string `form:"price" validate:"omitempty,price"`
}

// ValidateCreate checks that both fields are present and the price parses
// within the stored precision.
func (v *Validation) ValidateCreate(in ProductInput) ValidationErrors {
	return v.Validate(&createProductRules{Name: in.Name, Price: in.Price})
}

// ValidateUpdate checks the supplied fields only. Whether anything was
// supplied at all is the caller's concern.
func (v *Validation) ValidateUpdate(in ProductInput) ValidationErrors {
	return v.Validate(&updateProductRules{Name: in.Name, Price: in.Price})
}

func (v *Validation) Validate(i interface{}) ValidationErrors {
	var errs ValidationErrors

	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}

	for _, fe := range fieldErrors {
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed on the '%s' tag", fe.Tag()),
		})
	}

	return errs
}
