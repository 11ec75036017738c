package api

import (
	"net/http"
	"strconv"

	"fungarium/internal/registry"

	"github.com/gin-gonic/gin"
)

// GET /api/fields?visible=true
func FieldListHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		defs, err := s.Fields.List(c.Request.Context())
		if err != nil {
			s.writeError(c, err)
			return
		}
		if v, _ := strconv.ParseBool(c.Query("visible")); v {
			defs = registry.Active(defs)
		}
		c.Header("X-Total-Count", strconv.Itoa(len(defs)))
		c.JSON(http.StatusOK, defs)
	}
}

// GET /api/fields/:id
func FieldGetHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := s.Fields.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// POST /api/fields
func FieldCreateHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in registry.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "Invalid JSON")
			return
		}
		in.ID = ""
		d, err := s.Fields.Save(c.Request.Context(), in)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, d)
	}
}

// PUT /api/fields/:id
// Не заданные order/visible сохраняют текущие значения.
func FieldUpdateHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")
		if _, err := s.Fields.Get(ctx, id); err != nil {
			s.writeError(c, err)
			return
		}
		var in registry.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "Invalid JSON")
			return
		}
		in.ID = id
		d, err := s.Fields.Save(ctx, in)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// DELETE /api/fields/:id
// Значения в записях остаются; поле просто перестаёт показываться.
func FieldDeleteHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Fields.Delete(c.Request.Context(), c.Param("id")); err != nil {
			s.writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// POST /api/fields/:id/move  {"direction":"up"|"down"}
func FieldMoveHandler(s *Server) gin.HandlerFunc {
	type req struct {
		Direction string `json:"direction"`
	}
	return func(c *gin.Context) {
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "Invalid JSON: expected {direction}")
			return
		}
		dir, err := registry.ParseDirection(body.Direction)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		ctx := c.Request.Context()
		if err := s.Fields.Move(ctx, c.Param("id"), dir); err != nil {
			s.writeError(c, err)
			return
		}
		defs, err := s.Fields.List(ctx)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, defs)
	}
}

// POST /api/fields/_swap  {"a":id,"b":id}
func FieldSwapHandler(s *Server) gin.HandlerFunc {
	type req struct {
		A string `json:"a" binding:"required"`
		B string `json:"b" binding:"required"`
	}
	return func(c *gin.Context) {
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "Invalid JSON: expected {a, b}")
			return
		}
		ctx := c.Request.Context()
		if err := s.Fields.Swap(ctx, body.A, body.B); err != nil {
			s.writeError(c, err)
			return
		}
		defs, err := s.Fields.List(ctx)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, defs)
	}
}

// GET /api/fields/_lint
func FieldLintHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		issues, err := s.Fields.Lint(c.Request.Context())
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": len(issues) == 0, "issues": issues})
	}
}
