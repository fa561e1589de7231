package ginmw_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	ruleset "github.com/restkit/ruleset"
	ginmw "github.com/restkit/ruleset/middleware/gin"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	validate, err := ruleset.NewRegistry().BuildValidator(nil, ruleset.Overrides{
		Append: map[string]ruleset.Rule{
			"name": {Type: ruleset.TypeString, MinLength: ruleset.Ptr(3)},
			"role": {Type: ruleset.TypeString, Required: ruleset.Ptr(false), Default: "user"},
		},
	}, ruleset.Options{})
	if err != nil {
		t.Fatalf("BuildValidator: %v", err)
	}

	r := gin.New()
	r.POST("/users", ginmw.ValidateJSON(validate), func(c *gin.Context) {
		doc, ok := ginmw.Validated(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no document"})
			return
		}
		c.JSON(http.StatusCreated, doc)
	})
	return r
}

func TestValidateJSON_Accepts(t *testing.T) {
	r := newRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"amy"}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var doc map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc["name"] != "amy" || doc["role"] != "user" {
		t.Errorf("handler saw %v, want validated document with default applied", doc)
	}
}

func TestValidateJSON_RejectsWithFieldErrors(t *testing.T) {
	r := newRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"ab","role":7}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var payload struct {
		Errors []ruleset.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Errors) != 2 {
		t.Fatalf("errors = %+v, want both violations collected", payload.Errors)
	}
	fields := map[string]string{}
	for _, fe := range payload.Errors {
		fields[fe.Field] = fe.Kind
	}
	if fields["name"] != ruleset.KindMinLength || fields["role"] != ruleset.KindType {
		t.Errorf("errors = %v", fields)
	}
}

func TestValidateJSON_RejectsMalformedBody(t *testing.T) {
	r := newRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 on undecodable body", w.Code)
	}
}
