package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"fungarium/internal/field"
	"fungarium/internal/reference"
	"fungarium/internal/specimen"

	"github.com/gin-gonic/gin"
)

type reloadReq struct {
	FieldsRoot string `json:"fields_root"` // директория со стартовыми полями *.yaml
	EnumsRoot  string `json:"enums_root"`  // директория со справочниками enum
}

// POST /api/admin/reload-fields
// Перечитывает справочники и стартовые поля; в реестр добавляются только новые ключи.
func AdminReloadHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reloadReq
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}

		// пути из запроса - только внутри настроенных каталогов
		fieldsRoot, err := confine(s.Seeds.FieldsDir, req.FieldsRoot)
		if err != nil {
			badRequest(c, "fields_root: "+err.Error())
			return
		}
		enumsRoot, err := confine(s.Seeds.EnumsDir, req.EnumsRoot)
		if err != nil {
			badRequest(c, "enums_root: "+err.Error())
			return
		}

		// 1) читаем справочники и поля
		newEnums, err := reference.LoadEnumCatalog(enumsRoot)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Enum load error", "details": err.Error()})
			return
		}
		seeds, err := reference.LoadFieldSeeds(fieldsRoot, newEnums)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Field seeds load error", "details": err.Error()})
			return
		}

		// 2) линтер до записи в реестр
		if issues := field.Lint(seeds, specimen.IsFixed); len(issues) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "field seeds have blocking issues",
				"issues":     issues,
				"hint":       "fix seed files and retry",
				"fieldsRoot": fieldsRoot, "enumsRoot": enumsRoot,
			})
			return
		}

		// 3) новые ключи - в реестр, справочники - заменяем целиком
		created, err := s.Fields.Seed(c.Request.Context(), seeds)
		if err != nil {
			s.writeError(c, err)
			return
		}
		s.setEnums(newEnums)

		c.JSON(http.StatusOK, gin.H{
			"ok":         true,
			"fieldsRoot": fieldsRoot,
			"enumsRoot":  enumsRoot,
			"seeds":      len(seeds),
			"created":    created,
			"enumGroups": len(newEnums),
		})
	}
}

// confine разрешает p относительно base и не выпускает его за пределы base.
// Пустой p - сам base.
func confine(base, p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return base, nil
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	target := p
	if !filepath.IsAbs(target) {
		target = filepath.Join(absBase, target)
	}
	target = filepath.Clean(target)
	rel, err := filepath.Rel(absBase, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", p, base)
	}
	return target, nil
}
