package models

import (
	"github.com/go-playground/validator/v10"
)

// OverrideRequest sets or clears the replacement address for one row. An
// empty value clears; a bare local part gets the institutional domain
// appended downstream.
type OverrideRequest struct {
	Value string `json:"value" validate:"max=254"`
}

func (o *OverrideRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(o)
}
