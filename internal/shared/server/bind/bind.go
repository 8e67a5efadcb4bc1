// Package bind decodes request bodies into command structs and converts
// validator failures into field-scoped validation errors.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"recruit-backend/internal/shared/apperr"
)

var registerOnce sync.Once

// Setup configures gin's validator engine. Safe to call more than once.
func Setup() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.String {
				return true
			}
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
}

// JSON binds a JSON body into dst.
func JSON(c *gin.Context, dst any) error {
	Setup()
	return translate(c.ShouldBindJSON(dst))
}

// Body binds JSON or form bodies into dst based on Content-Type.
func Body(c *gin.Context, dst any) error {
	Setup()
	return translate(c.ShouldBind(dst))
}

// Query binds query parameters into dst.
func Query(c *gin.Context, dst any) error {
	Setup()
	return translate(c.ShouldBindQuery(dst))
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperr.Field(fieldPath(fe), describe(fe), fe.Value()))
		}
		return apperr.Validation("Validation failed", fields...)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperr.Validation("Malformed JSON body")
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Validation("Validation failed",
			apperr.Field(typeErr.Field, fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type), typeErr.Value))
	}
	return apperr.Validation("Invalid request body")
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return name + " is required"
	case "email":
		return name + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s characters/items", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s characters/items", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", name, fe.Param())
	case "len":
		return fmt.Sprintf("%s must have length %s", name, fe.Param())
	case "url":
		return name + " must be a valid URL"
	case "uuid", "uuid4":
		return name + " must be a valid id"
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}
