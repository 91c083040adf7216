package middleware

import (
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the ledger's custom binding tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseCurrency(fl.Field().String())
		return err == nil
	})
}
