package handlers

import (
	"net/http"
	"strings"

	"microwave/internal/service"

	"github.com/gin-gonic/gin"
)

const operatorCtx = "operator"

// operatorMiddleware rejects requests without a valid bearer token. The
// operator named by the token is stored in the gin context and attached to
// the request context, so oven commands issued by the handler are
// attributed to them.
func (h *Handler) operatorMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	op, err := h.services.Authenticate(parts[1])
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_token_rejected", "path", c.FullPath(), "err", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(operatorCtx, op)
	c.Request = c.Request.WithContext(service.WithOperator(c.Request.Context(), op))
	c.Next()
}

// currentOperator returns the operator stored by operatorMiddleware.
func currentOperator(c *gin.Context) (service.Operator, bool) {
	v, ok := c.Get(operatorCtx)
	if !ok {
		return service.Operator{}, false
	}
	op, ok := v.(service.Operator)
	return op, ok
}
