package catalog

import (
	"regexp"
	"strings"

	"github.com/groupbuy/backend/internal/domain/shared"
)

var (
	categoryCodeRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)
	colorRegex        = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// Category groups group buys for browsing (food, daily goods, textbooks, ...)
type Category struct {
	shared.BaseEntity
	Code      string
	Name      string
	NameEn    string
	Icon      string
	Color     string
	SortOrder int
}

// NewCategory creates a category. Code is the slug group buys refer to.
func NewCategory(code, name, nameEn string) (*Category, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) == 0 || len(code) > 50 || !categoryCodeRegex.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CATEGORY_CODE", "Category code must be a lowercase slug of at most 50 characters")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name must be 1 to 100 characters")
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		NameEn:     strings.TrimSpace(nameEn),
	}, nil
}

// SetAppearance sets the icon and color shown next to the category
func (c *Category) SetAppearance(icon, color string) error {
	if color != "" && !colorRegex.MatchString(color) {
		return shared.NewDomainError("INVALID_COLOR", "Color must be a hex value like #FF6B6B")
	}
	c.Icon = strings.TrimSpace(icon)
	c.Color = color
	c.Touch()
	return nil
}
