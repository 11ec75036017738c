package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"fungarium/internal/bulk"
	"fungarium/internal/schema"

	"github.com/gin-gonic/gin"
)

// PATCH /api/specimens/_bulk
//
//	{"ids":[...], "draft":{"key":{"enabled":true,"value":...}}}
//	{"ids":[...], "patch":{"key":value}}   - то же, все ключи включены
//
// Один патч на всю выборку; ошибка по одной записи не останавливает остальные.
func BulkPatchHandler(s *Server) gin.HandlerFunc {
	type req struct {
		IDs   []string              `json:"ids"`
		Draft map[string]bulk.Entry `json:"draft"`
		Patch map[string]any        `json:"patch"`
	}
	return func(c *gin.Context) {
		var body req
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "Invalid JSON: expected {ids:[], draft:{}}")
			return
		}
		ids := cleanIDs(body.IDs)
		if len(ids) == 0 {
			badRequest(c, "ids must not be empty")
			return
		}
		entries := body.Draft
		if entries == nil {
			entries = make(map[string]bulk.Entry, len(body.Patch))
			for k, v := range body.Patch {
				entries[k] = bulk.Entry{Value: v, Enabled: true}
			}
		}

		ctx := c.Request.Context()
		active, err := s.active(ctx)
		if err != nil {
			s.writeError(c, err)
			return
		}
		merged := schema.Merge(active)
		dr, err := bulk.FromEntries(merged.Fields(), entries)
		if err != nil {
			s.writeError(c, err)
			return
		}
		patch, err := bulk.PlanPatch(dr, merged.Dynamic())
		if errors.Is(err, bulk.ErrEmptyPatch) {
			c.JSON(http.StatusOK, gin.H{"noop": true})
			return
		}
		if err != nil {
			s.writeError(c, err)
			return
		}

		out := bulk.Apply(ctx, s.Specimens, ids, patch)
		out.Log(s.reqLog(c), "bulk_patch")
		c.JSON(http.StatusMultiStatus, gin.H{"patch": patch, "succeeded": out.Succeeded, "failed": out.Failed})
	}
}

// POST /api/specimens/_bulk_delete  {"ids":[]}
func BulkDeleteHandler(s *Server) gin.HandlerFunc {
	type req struct {
		IDs []string `json:"ids"`
	}
	return func(c *gin.Context) {
		var body req
		if err := c.ShouldBindJSON(&body); err != nil || len(cleanIDs(body.IDs)) == 0 {
			badRequest(c, "Invalid JSON: expected {ids:[]}")
			return
		}
		out := bulk.Delete(c.Request.Context(), s.Specimens, cleanIDs(body.IDs))
		out.Log(s.reqLog(c), "bulk_delete")
		c.JSON(http.StatusMultiStatus, out)
	}
}

// POST /api/specimens/_import
// CSV в поле формы "file" или прямо в теле запроса.
func ImportHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var src io.Reader = c.Request.Body
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			fh, err := c.FormFile("file")
			if err != nil {
				badRequest(c, "multipart upload must carry a 'file' part")
				return
			}
			f, err := fh.Open()
			if err != nil {
				badRequest(c, "cannot open uploaded file")
				return
			}
			defer f.Close()
			src = f
		}

		res, err := s.Specimens.Import(c.Request.Context(), src)
		if err != nil && len(res.Succeeded) == 0 && len(res.Failed) == 0 {
			badRequest(c, err.Error())
			return
		}
		if err != nil {
			s.reqLog(c).WithError(err).Warn("csv import interrupted")
		}
		c.JSON(http.StatusMultiStatus, res)
	}
}

func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
