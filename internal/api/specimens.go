package api

import (
	"net/http"
	"strconv"

	"fungarium/internal/field"
	"fungarium/internal/form"
	"fungarium/internal/schema"
	"fungarium/internal/specimen"

	"github.com/gin-gonic/gin"
)

// POST /api/specimens
func CreateHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		values, err := s.readValues(c)
		if err != nil {
			s.writeError(c, err)
			return
		}
		rec, err := s.Specimens.Create(c.Request.Context(), values)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rec)
	}
}

// GET /api/specimens
func ListHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		lp, err := parseListParams(c.Request.URL.Query())
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		ctx := c.Request.Context()

		// первое простое условие уходит в хранилище, остальные - в памяти
		var recs []specimen.Record
		rest := lp.Conds
		if len(rest) > 0 && len(rest[0].vals) == 1 {
			first := rest[0]
			recs, err = s.Specimens.Query(ctx, first.field, first.op, first.vals[0])
			rest = rest[1:]
		} else {
			recs, err = s.Specimens.List(ctx)
		}
		if err != nil {
			s.writeError(c, err)
			return
		}

		rows := make([]map[string]any, 0, len(recs))
		for i := range recs {
			row := recs[i].Flat()
			if !matchAll(row, rest) {
				continue
			}
			if lp.Q != "" && !containsText(row, lp.Q) {
				continue
			}
			rows = append(rows, row)
		}
		sortRows(rows, lp.Sort, lp.Nulls)

		c.Header("X-Total-Count", strconv.Itoa(len(rows)))
		c.JSON(http.StatusOK, page(rows, lp.Offset, lp.Limit))
	}
}

func matchAll(row map[string]any, conds []filterCond) bool {
	for _, fc := range conds {
		if !fc.match(row) {
			return false
		}
	}
	return true
}

// GET /api/specimens/:id
func GetOneHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := s.Specimens.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.Header("ETag", strconv.FormatInt(rec.Version, 10))
		c.JSON(http.StatusOK, rec)
	}
}

type detailField struct {
	Key     string     `json:"key"`
	Label   string     `json:"label"`
	Type    field.Type `json:"type"`
	Value   any        `json:"value"`
	Display string     `json:"display"`
}

type detailSection struct {
	Name   string        `json:"name"`
	Fixed  bool          `json:"fixed"`
	Fields []detailField `json:"fields"`
}

// GET /api/specimens/:id/detail
// Только поля, у которых у записи есть значение; пустые секции не отдаются.
func DetailHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		rec, err := s.Specimens.Get(ctx, c.Param("id"))
		if err != nil {
			s.writeError(c, err)
			return
		}
		active, err := s.active(ctx)
		if err != nil {
			s.writeError(c, err)
			return
		}

		sections := []detailSection{}
		for _, sec := range schema.Detail(&rec, active).Sections {
			ds := detailSection{Name: sec.Name, Fixed: sec.Fixed}
			for _, d := range sec.Fields {
				v, _ := rec.Get(d.Key)
				ds.Fields = append(ds.Fields, detailField{
					Key:     d.Key,
					Label:   d.Label,
					Type:    d.Type,
					Value:   v,
					Display: form.Display(d, v),
				})
			}
			sections = append(sections, ds)
		}
		c.JSON(http.StatusOK, gin.H{"id": rec.ID, "version": rec.Version, "sections": sections})
	}
}

// PUT /api/specimens/:id
// Присланные ключи заменяются, остальные сохраняются. Версия (If-Match или "version")
// необязательна: без неё побеждает последний записавший.
func UpdateHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		values, err := s.readValues(c)
		if err != nil {
			s.writeError(c, err)
			return
		}
		var expected *int64
		if v, ok := readExpectedVersion(c, values); ok {
			expected = &v
		}
		rec, err := s.Specimens.Update(c.Request.Context(), c.Param("id"), values, expected)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.Header("ETag", strconv.FormatInt(rec.Version, 10))
		c.JSON(http.StatusOK, rec)
	}
}

// DELETE /api/specimens/:id
func DeleteHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Specimens.Delete(c.Request.Context(), c.Param("id")); err != nil {
			s.writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
