package simulation

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// formValidator returns the shared validator with the simulation's custom
// tags registered.
func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := validate.RegisterValidation("positive_amount", positiveAmount); err != nil {
			panic(err)
		}
	})
	return validate
}

// positiveAmount accepts finite decimal strings greater than zero.
func positiveAmount(fl validator.FieldLevel) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
	return err == nil && v > 0 && !math.IsInf(v, 0)
}
