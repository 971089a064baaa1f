package response

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/healthclarity/lead-intake-api/pkg/errors"
)

// JSON sends a success payload as-is. The public contract uses flat
// bodies, so there is no envelope around the data.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// Error converts any error to the typed structure and sends it with its
// HTTP status.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, appErr)
}
