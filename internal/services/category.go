package services

// Category is a software category a version record belongs to. The set is
// closed; records with any other software_type are ignored.
type Category string

const (
	CategoryPHP        Category = "php"
	CategoryNodeJS     Category = "nodejs"
	CategoryMySQL      Category = "mysql"
	CategoryPostgreSQL Category = "postgresql"
)

// AllCategories lists every category in display order.
func AllCategories() []Category {
	return []Category{CategoryPHP, CategoryNodeJS, CategoryMySQL, CategoryPostgreSQL}
}

func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryPHP, CategoryNodeJS, CategoryMySQL, CategoryPostgreSQL:
		return Category(s), true
	default:
		return "", false
	}
}

// Presentation is how a category is drawn in the versions browser.
type Presentation struct {
	Label      string `json:"label"`
	Icon       string `json:"icon"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Badge      string `json:"badge"`
}

// PresentationFor maps a raw software_type to its label, icon and colours.
// Unknown codes keep their raw text and the grey palette.
func PresentationFor(softwareType string) Presentation {
	c, _ := ParseCategory(softwareType)
	switch c {
	case CategoryPHP:
		return Presentation{Label: "PHP", Icon: "code", Background: "bg-blue-100", Text: "text-blue-600", Badge: "bg-blue-600"}
	case CategoryNodeJS:
		return Presentation{Label: "Node.js", Icon: "code", Background: "bg-green-100", Text: "text-green-600", Badge: "bg-green-600"}
	case CategoryMySQL:
		return Presentation{Label: "MySQL", Icon: "database", Background: "bg-orange-100", Text: "text-orange-600", Badge: "bg-orange-600"}
	case CategoryPostgreSQL:
		return Presentation{Label: "PostgreSQL", Icon: "database", Background: "bg-purple-100", Text: "text-purple-600", Badge: "bg-purple-600"}
	default:
		return Presentation{Label: softwareType, Background: "bg-gray-100", Text: "text-gray-600", Badge: "bg-gray-600"}
	}
}

// DatabaseEngine is the database a system user is configured with.
type DatabaseEngine string

const (
	EngineMySQL      DatabaseEngine = "mysql"
	EnginePostgreSQL DatabaseEngine = "postgresql"
)

func ParseDatabaseEngine(s string) (DatabaseEngine, bool) {
	switch DatabaseEngine(s) {
	case EngineMySQL, EnginePostgreSQL:
		return DatabaseEngine(s), true
	default:
		return "", false
	}
}

// Category is the version bucket holding this engine's versions.
func (e DatabaseEngine) Category() Category {
	if e == EnginePostgreSQL {
		return CategoryPostgreSQL
	}
	return CategoryMySQL
}

func (e DatabaseEngine) Label() string {
	return PresentationFor(string(e.Category())).Label
}
