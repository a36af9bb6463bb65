package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/oxygen/pkg/rule"
)

type record struct {
	Filename string `rule:"required"`
	Path     string `rule:"required,hostpath"`
	Size     int    `rule:"gte=0"`
}

func TestEngine(t *testing.T) {
	assert.NotNil(t, rule.Engine())
	assert.Same(t, rule.Engine(), rule.Engine())
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, rule.ValidateStruct(record{Filename: "a.go", Path: "/src/a.go"}))

	err := rule.ValidateStruct(record{Filename: "", Path: "/src/a.go"})
	require.Error(t, err)
	assert.Equal(t, rule.ValidationErrors{"Filename": "required"}, rule.Errors(err))

	err = rule.ValidateStruct(record{Filename: "a", Path: "/src/a", Size: -1})
	assert.Equal(t, rule.ValidationErrors{"Size": "gte=0"}, rule.Errors(err))
}

func TestHostPath(t *testing.T) {
	cases := map[string]bool{
		"/src/a.go":  true,
		"C:\\a.txt":  true,
		"   ":        false,
		"/a\x00b.go": false,
	}

	for p, ok := range cases {
		err := rule.ValidateVar(p, rule.TagHostPath)
		if ok {
			assert.NoError(t, err, p)
		} else {
			assert.Error(t, err, p)
		}
	}
}

func TestDescribe(t *testing.T) {
	err := rule.ValidateStruct(record{})
	assert.Equal(t, "Filename: required; Path: required", rule.Describe(err))

	assert.Nil(t, rule.Errors(assert.AnError))
	assert.Equal(t, assert.AnError.Error(), rule.Describe(assert.AnError))
}

func TestRegisterValidation(t *testing.T) {
	err := rule.RegisterValidation("even_length", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String())%2 == 0
	})
	require.NoError(t, err)

	assert.NoError(t, rule.ValidateVar("test", "even_length"))
	assert.Error(t, rule.ValidateVar("test1", "even_length"))
}
