// Package rule 提供结构体和字段验证功能的封装，基于 go-playground/validator 实现.
//
// 标签名为 rule，与 gin 绑定共用同一个引擎；额外注册了 hostpath 规则.
package rule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// TagHostPath 宿主路径规则：不含 NUL 且不全是空白.
const TagHostPath = "hostpath"

var (
	inst *validator.Validate
	once sync.Once
)

// initValidator 尝试复用 gin 的 validator 引擎；若不可用则新建.
func initValidator() {
	inst = validator.New()

	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
		}
	}

	inst.SetTagName("rule")
	_ = inst.RegisterValidation(TagHostPath, hostPath)
}

func hostPath(fl validator.FieldLevel) bool {
	s := fl.Field().String()

	return strings.TrimSpace(s) != "" && !strings.ContainsRune(s, 0)
}

func lazyInit() {
	once.Do(initValidator)
}

// Engine 返回全局 *validator.Validate.
func Engine() *validator.Validate {
	lazyInit()

	return inst
}

// RegisterValidation 注册自定义规则.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	lazyInit()

	return inst.RegisterValidation(tag, fn, opts...)
}

// ValidationErrors 字段名到失败规则的映射.
type ValidationErrors map[string]string

// ValidateStruct 对结构体执行完整校验，返回原始 error（可用 Errors 解析）.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则对单个变量校验，例如: ValidateVar("/tmp/a", "required,hostpath").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}

// Errors 将校验错误展开为字段映射；非校验错误返回 nil.
func Errors(err error) ValidationErrors {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	out := make(ValidationErrors, len(ve))

	for _, fe := range ve {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}

		out[fe.Field()] = msg
	}

	return out
}

// Describe 生成稳定排序的单行描述，如 "Filename: required; Path: hostpath".
func Describe(err error) string {
	fields := Errors(err)
	if fields == nil {
		return fmt.Sprint(err)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}

	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+fields[name])
	}

	return strings.Join(parts, "; ")
}
