package validators

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"couponHub/backend/models"
	"couponHub/backend/utils"
)

var registerOnce sync.Once

// Register installs the custom rules on gin's validator engine. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("slug", validateSlug)
		_ = v.RegisterValidation("discount_type", validateDiscountType)
	})
}

func validateSlug(fl validator.FieldLevel) bool {
	return utils.IsSlug(fl.Field().String())
}

func validateDiscountType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case models.DiscountPercentage, models.DiscountFlat, models.DiscountDeal:
		return true
	}
	return false
}
