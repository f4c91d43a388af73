package utils

import "github.com/gin-gonic/gin"

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}

// JSONErrorDetail attaches structured fields (current/max counts etc.) so
// callers can render the conflicting numbers.
func JSONErrorDetail(c *gin.Context, code int, message string, detail gin.H) {
	body := gin.H{"success": false, "error": message}
	for k, v := range detail {
		body[k] = v
	}
	c.JSON(code, body)
}
