package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fungarium/internal/bulk"
	"fungarium/internal/field"
	"fungarium/internal/form"
	"fungarium/internal/registry"
	"fungarium/internal/schema"
	"fungarium/internal/specimen"

	"github.com/gin-gonic/gin"
)

// writeError переводит ошибку ядра в HTTP-ответ. Ошибки валидации - всегда {"errors":[...]}.
func (s *Server) writeError(c *gin.Context, err error) {
	var errs field.Errors
	var one *field.Error
	var werr *registry.WriteError
	switch {
	case errors.As(err, &errs):
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
	case errors.As(err, &one):
		c.JSON(http.StatusBadRequest, gin.H{"errors": field.Errors{*one}})
	case errors.Is(err, registry.ErrNotFound), errors.Is(err, specimen.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, registry.ErrDuplicateKey), errors.Is(err, specimen.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errInvalidJSON), errors.Is(err, errInvalidForm),
		errors.Is(err, bulk.ErrUnknownKey), errors.Is(err, bulk.ErrDisabled):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &werr):
		s.reqLog(c).WithError(werr.Err).WithField("op", werr.Op).WithField("id", werr.ID).Error("field registry write failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": werr.Error()})
	default:
		s.reqLog(c).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// readExpectedVersion читает ожидаемую версию из If-Match либо из payload["version"] (число).
func readExpectedVersion(c *gin.Context, payload map[string]any) (int64, bool) {
	// 1) If-Match: допускаем просто число (например, "3")
	ifMatch := strings.TrimSpace(c.GetHeader("If-Match"))
	if ifMatch != "" {
		// уберём кавычки/weak-префикс вида W/"3"
		ifMatch = strings.TrimPrefix(ifMatch, "W/")
		ifMatch = strings.Trim(ifMatch, `"'`)
		if v, err := strconv.ParseInt(ifMatch, 10, 64); err == nil {
			return v, true
		}
	}
	// 2) из тела: "version": <int>
	if payload != nil {
		if raw, ok := payload["version"]; ok {
			switch t := raw.(type) {
			case float64:
				return int64(t), true
			case string:
				if v, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
					return v, true
				}
			}
		}
	}
	return 0, false
}

func isForm(c *gin.Context) bool {
	switch c.ContentType() {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return true
	}
	return false
}

// readValues - значения записи из тела: JSON-объект как есть, либо HTML-форма,
// разобранная виджетами полей текущей схемы.
func (s *Server) readValues(c *gin.Context) (map[string]any, error) {
	if !isForm(c) {
		var obj map[string]any
		if err := c.ShouldBindJSON(&obj); err != nil {
			return nil, errInvalidJSON
		}
		return obj, nil
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, errInvalidForm
	}
	raw := make(map[string]string, len(c.Request.PostForm))
	for k, vs := range c.Request.PostForm {
		if len(vs) > 0 {
			raw[k] = vs[len(vs)-1]
		}
	}
	active, err := s.active(c.Request.Context())
	if err != nil {
		return nil, err
	}
	values, err := form.ParseForm(schema.Merge(active), form.Single, raw)
	if err != nil {
		return nil, err
	}
	if v, ok := raw["version"]; ok {
		values["version"] = v
	}
	return values, nil
}

var (
	errInvalidJSON = errors.New("invalid JSON")
	errInvalidForm = errors.New("invalid form data")
)
