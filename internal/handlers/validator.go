package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators 注册自定义校验规则到gin的binding引擎
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// rolekey: 2-50个字符，只允许小写字母、数字和下划线
	_ = v.RegisterValidation("rolekey", func(fl validator.FieldLevel) bool {
		key := fl.Field().String()
		if len(key) < 2 || len(key) > 50 {
			return false
		}
		for _, r := range key {
			if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_') {
				return false
			}
		}
		return true
	})

	// permkey: module:action 形式的权限key
	_ = v.RegisterValidation("permkey", func(fl validator.FieldLevel) bool {
		key := fl.Field().String()
		sep := -1
		for i, r := range key {
			if r == ':' {
				if sep >= 0 {
					return false
				}
				sep = i
			}
		}
		return sep > 0 && sep < len(key)-1
	})
}
