package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, gin.H{
		"code":    httpCode,
		"message": message,
	})
}

func ErrorWithData(c *gin.Context, httpCode int, message string, data interface{}) {
	c.JSON(httpCode, gin.H{
		"code":    httpCode,
		"message": message,
		"data":    data,
	})
}
