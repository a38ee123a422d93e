// Package validate 注册请求绑定用的自定义校验标签。
package validate

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"fleetwave/backend/internal/rentstatus"
)

var once sync.Once

// Register 向 gin 的默认校验引擎注册：
//   - rent_shift   班次（morning / night / 24hr / none，大小写与空白不敏感）
//   - rent_status  报告状态
//   - ymd          YYYY-MM-DD 日期
func Register() error {
	var err error
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("validate: 不支持的校验引擎 %T", binding.Validator.Engine())
			return
		}
		err = RegisterOn(v)
	})
	return err
}

// RegisterOn 在指定校验器上注册自定义标签
func RegisterOn(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"rent_shift":  validShift,
		"rent_status": validReportStatus,
		"ymd":         validDate,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("注册校验标签 %s 失败: %w", tag, err)
		}
	}
	return nil
}

func validShift(fl validator.FieldLevel) bool {
	// ParseShift 会把未知值归为 none，这里要求原值本身可识别
	return rentstatus.Shift(strings.ToLower(strings.TrimSpace(fl.Field().String()))).Valid()
}

func validReportStatus(fl validator.FieldLevel) bool {
	return rentstatus.ReportStatus(fl.Field().String()).Valid()
}

func validDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(rentstatus.DateLayout, fl.Field().String())
	return err == nil
}
