package api

import (
	"net/http"

	"fungarium/internal/field"
	"fungarium/internal/form"
	"fungarium/internal/schema"
	"fungarium/internal/specimen"

	"github.com/gin-gonic/gin"
)

// ===== META HANDLERS =====

// GET /api/meta/schema - действующая схема: фиксированные секции и видимые поля.
func MetaSchemaHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		active, err := s.active(c.Request.Context())
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, schema.Merge(active))
	}
}

// GET /api/meta/form?mode=single|bulk[&id=...]
// С id элементы заполняются значениями записи (только для single).
func MetaFormHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode, err := form.ParseMode(c.Query("mode"))
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		ctx := c.Request.Context()
		active, err := s.active(ctx)
		if err != nil {
			s.writeError(c, err)
			return
		}

		var values schema.Valuer
		if id := c.Query("id"); id != "" && mode == form.Single {
			rec, err := s.Specimens.Get(ctx, id)
			if err != nil {
				s.writeError(c, err)
				return
			}
			values = &rec
		}
		c.JSON(http.StatusOK, gin.H{
			"mode":   mode,
			"groups": form.Controls(schema.Merge(active), mode, values),
		})
	}
}

type metaCategory struct {
	Code  field.Category `json:"code"`
	Label string         `json:"label"`
}

// GET /api/meta/types - типы и категории для редактора полей.
func MetaTypesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cats := make([]metaCategory, 0, len(field.Categories))
		for _, cat := range field.Categories {
			cats = append(cats, metaCategory{Code: cat, Label: cat.Label()})
		}
		c.JSON(http.StatusOK, gin.H{
			"types":      field.Types,
			"categories": cats,
			"habito":     specimen.HabitoOptions,
		})
	}
}

// GET /api/meta/catalog/:name - справочник значений enum.
func MetaCatalogHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		dir, ok := s.enum(name)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Catalog not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"name":    name,
			"items":   dir.Items,
			"options": dir.Options(),
		})
	}
}
