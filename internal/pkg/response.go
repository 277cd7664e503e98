package pkg

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/colocmatching/internal/domain"
)

// ProblemContentType is the media type of RFC 7807 problem documents.
const ProblemContentType = "application/problem+json"

// Response is the standard JSON envelope for API responses.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorResponse is the JSON envelope for error responses.
type ErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Problem is an RFC 7807 problem document.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Success sends a 200 JSON response with the given data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// Created sends a 201 JSON response and points the Location header at the
// new resource.
func Created(c *gin.Context, location string, data any) {
	if location != "" {
		c.Header("Location", location)
	}
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

// Pager is implemented by *Page[T].
type Pager interface {
	HasNext() bool
}

// List sends a paginated result: 206 Partial Content while more rows remain,
// 200 once the page is the last one.
func List(c *gin.Context, page Pager) {
	status := http.StatusOK
	if page != nil && page.HasNext() {
		status = http.StatusPartialContent
	}
	c.JSON(status, Response{
		Code:    status,
		Message: "success",
		Data:    page,
	})
}

// Error sends a JSON error response. If err is a *domain.AppError, its code is
// mapped to the appropriate HTTP status; otherwise 500 is returned.
// Internal causes are never echoed to the client.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)

	var appErr *domain.AppError
	msg := "internal error"
	var fields map[string]string
	if errors.As(err, &appErr) {
		msg = appErr.Message
		fields = appErr.Fields
	}
	if status == http.StatusInternalServerError {
		msg = "internal error"
		fields = nil
	}
	_ = c.Error(err)

	c.JSON(status, ErrorResponse{
		Code:    status,
		Message: msg,
		Errors:  fields,
	})
}

// AbortWithError is Error followed by c.Abort, for middlewares.
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// AbortWithProblem aborts the request with a problem+json document.
func AbortWithProblem(c *gin.Context, status int, detail string) {
	body := Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
	c.Header("Content-Type", ProblemContentType)
	c.AbortWithStatusJSON(status, body)
}

// ValidationError sends a 400 JSON response with per-field validation error details.
// It detects validator.ValidationErrors and extracts field-level messages.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindAndValidate binds the request body to obj and validates it.
// On failure it sends a ValidationError response and returns false.
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

// BindQuery binds the query string to obj and validates it, like BindAndValidate.
func BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

// FieldErrors converts validator errors to a field → message map. Field names
// prefer the JSON tags of obj when it is a struct.
func FieldErrors(err error, obj any) (map[string]string, bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}

	jsonTags := buildJSONTagMap(obj)

	fieldErrors := make(map[string]string, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		if tag, ok := jsonTags[fe.StructField()]; ok {
			name = tag
		} else {
			name = strings.ToLower(name)
		}
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fieldErrors[name] = msg
	}
	return fieldErrors, true
}

func validationErrorWithType(c *gin.Context, err error, obj any) {
	fields, ok := FieldErrors(err, obj)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("malformed request: %v", err),
		})
		return
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fields,
	})
}

// buildJSONTagMap returns a map from struct field name to its JSON tag name,
// descending into embedded structs.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	collectJSONTags(t, m)
	return m
}

func collectJSONTags(t reflect.Type, m map[string]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectJSONTags(f.Type, m)
			continue
		}
		if name := parseJSONTagName(f.Tag.Get("json")); name != "" {
			m[f.Name] = name
		}
	}
}

// parseJSONTagName extracts the field name from a JSON struct tag value.
func parseJSONTagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return ""
	}
	return name
}
