// api/router.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(s.log), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/meta/schema", MetaSchemaHandler(s))
		apiGroup.GET("/meta/form", MetaFormHandler(s))
		apiGroup.GET("/meta/types", MetaTypesHandler())
		apiGroup.GET("/meta/catalog/:name", MetaCatalogHandler(s))

		// реестр полей: служебные маршруты - СНАЧАЛА
		apiGroup.GET("/fields/_lint", FieldLintHandler(s))
		apiGroup.POST("/fields/_swap", FieldSwapHandler(s))
		apiGroup.POST("/fields/:id/move", FieldMoveHandler(s))
		apiGroup.GET("/fields", FieldListHandler(s))
		apiGroup.GET("/fields/:id", FieldGetHandler(s))
		apiGroup.POST("/fields", FieldCreateHandler(s))
		apiGroup.PUT("/fields/:id", FieldUpdateHandler(s))
		apiGroup.DELETE("/fields/:id", FieldDeleteHandler(s))

		// записи
		apiGroup.PATCH("/specimens/_bulk", BulkPatchHandler(s))
		apiGroup.POST("/specimens/_bulk_delete", BulkDeleteHandler(s))
		apiGroup.POST("/specimens/_import", ImportHandler(s))
		apiGroup.GET("/specimens/:id/detail", DetailHandler(s))

		apiGroup.POST("/specimens", CreateHandler(s))
		apiGroup.GET("/specimens", ListHandler(s))
		apiGroup.GET("/specimens/:id", GetOneHandler(s))
		apiGroup.PUT("/specimens/:id", UpdateHandler(s))
		apiGroup.DELETE("/specimens/:id", DeleteHandler(s))

		apiGroup.POST("/admin/reload-fields", AdminReloadHandler(s))
	}

	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Info("request rejected")
		default:
			entry.Debug("request")
		}
	}
}

// reqLog - логгер запроса с его идентификатором.
func (s *Server) reqLog(c *gin.Context) *logrus.Entry {
	return s.log.WithField("request_id", c.GetString("request_id"))
}
