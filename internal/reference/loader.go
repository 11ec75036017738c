package reference

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fungarium/internal/field"

	"gopkg.in/yaml.v3"
)

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && (strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

// LoadEnumCatalog читает все справочники из папки. Отсутствующая папка - пустой каталог.
func LoadEnumCatalog(dir string) (map[string]EnumDirectory, error) {
	result := make(map[string]EnumDirectory)
	files, err := yamlFiles(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var enumDir EnumDirectory
		if err := yaml.Unmarshal(data, &enumDir); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		// Имя справочника - из enumDir.Name или из имени файла
		enumName := enumDir.Name
		if enumName == "" {
			base := filepath.Base(path)
			enumName = strings.TrimSuffix(base, filepath.Ext(base))
		}
		result[enumName] = enumDir
	}
	return result, nil
}

// Options - коды справочника в порядке Order (при равенстве - как в файле).
func (d EnumDirectory) Options() []string {
	items := append([]EnumItem(nil), d.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Code)
	}
	return out
}

// LoadFieldSeeds читает стартовые определения полей. Order не задаётся -
// его назначит реестр при сохранении, в порядке файлов и полей в них.
func LoadFieldSeeds(dir string, enums map[string]EnumDirectory) ([]field.Definition, error) {
	files, err := yamlFiles(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []field.Definition
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var ff FieldFile
		if err := yaml.Unmarshal(data, &ff); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for i, s := range ff.Fields {
			d, err := s.definition(ff.Category, enums)
			if err != nil {
				return nil, fmt.Errorf("%s: fields[%d]: %w", path, i, err)
			}
			out = append(out, d)
		}
	}
	return out, nil
}

func (s FieldSeed) definition(fileCategory string, enums map[string]EnumDirectory) (field.Definition, error) {
	key := s.Key
	if strings.TrimSpace(key) == "" {
		key = s.Label
	}
	d := field.Definition{
		Key:         field.NormalizeKey(key),
		Label:       strings.TrimSpace(s.Label),
		Type:        field.Type(strings.ToLower(strings.TrimSpace(s.Type))),
		Category:    field.Category(s.Category),
		Required:    s.Required,
		EnumOptions: s.Options,
		Min:         s.Min,
		Max:         s.Max,
		Visible:     !s.Hidden,
		Placeholder: s.Placeholder,
		Description: s.Description,
	}
	if d.Category == "" {
		d.Category = field.Category(fileCategory)
	}
	if d.Category == "" {
		d.Category = field.CategoryOther
	}
	if d.Key == "" {
		return d, fmt.Errorf("key or label is required")
	}
	if d.Label == "" {
		d.Label = s.Key
	}
	if !d.Type.Valid() {
		return d, fmt.Errorf("%s: unknown type %q", d.Key, s.Type)
	}
	if !d.Category.Valid() {
		return d, fmt.Errorf("%s: unknown category %q", d.Key, d.Category)
	}
	if s.Enum != "" {
		dir, ok := enums[s.Enum]
		if !ok {
			return d, fmt.Errorf("%s: enum directory %q not found", d.Key, s.Enum)
		}
		d.EnumOptions = dir.Options()
	}
	return d, nil
}
