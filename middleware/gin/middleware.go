package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	ruleset "github.com/restkit/ruleset"
	"github.com/restkit/ruleset/middleware"
)

// ValidateJSON decodes the request body, runs the compiled validator, and on
// failure responds 400 with the field-error payload. The validated (coerced,
// defaulted) document is stored in the request context for handlers.
func ValidateJSON(validate ruleset.ValidateFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload any
		if err := json.NewDecoder(c.Request.Body).Decode(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		res := validate(payload)
		if !res.OK {
			c.JSON(http.StatusBadRequest, middleware.ErrorPayload(res.Errors))
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithDocument(c.Request.Context(), res.Data))
		c.Next()
	}
}

// Validated fetches the validated document from gin.Context.
func Validated(c *gin.Context) (any, bool) {
	return middleware.DocumentFromContext(c.Request.Context())
}
