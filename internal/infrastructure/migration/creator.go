package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix      = ".up.sql"
	downSuffix    = ".down.sql"
	versionDigits = 6
)

var fileTemplate = template.Must(template.New("migration").Parse(`-- {{.Name}}{{if .Down}} (rollback){{end}}
-- Created: {{.Created}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))

// File is one up/down migration pair on disk
type File struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// Create writes the next numbered migration pair, e.g. 000004_add_ratings.up.sql
func Create(dir, name, description string, now time.Time) (*File, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}
	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	var version uint = 1
	if len(existing) > 0 {
		version = existing[len(existing)-1].Version + 1
	}

	base := fmt.Sprintf("%0*d_%s", versionDigits, version, slug)
	f := &File{
		Version:  version,
		Name:     slug,
		UpPath:   filepath.Join(dir, base+upSuffix),
		DownPath: filepath.Join(dir, base+downSuffix),
	}
	data := struct {
		Name, Description, Created string
		Down                       bool
	}{Name: slug, Description: strings.TrimSpace(description), Created: now.UTC().Format(time.RFC3339)}

	if err := writeTemplate(f.UpPath, data); err != nil {
		return nil, err
	}
	data.Down = true
	if err := writeTemplate(f.DownPath, data); err != nil {
		_ = os.Remove(f.UpPath)
		return nil, err
	}
	return f, nil
}

func writeTemplate(path string, data any) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()
	if err := fileTemplate.Execute(out, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ListMigrations returns the migration pairs in dir ordered by version.
// Files that do not follow the NNNNNN_name.up.sql layout are ignored.
func ListMigrations(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []File
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, upSuffix) {
			continue
		}
		base := strings.TrimSuffix(name, upSuffix)
		num, slug, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		version, err := strconv.ParseUint(num, 10, 32)
		if err != nil {
			continue
		}
		files = append(files, File{
			Version:  uint(version),
			Name:     slug,
			UpPath:   filepath.Join(dir, name),
			DownPath: filepath.Join(dir, base+downSuffix),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// sanitizeName lowercases name and collapses separators into single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(c)
		case c == ' ', c == '-', c == '_':
			pendingSep = true
		}
	}
	return b.String()
}
