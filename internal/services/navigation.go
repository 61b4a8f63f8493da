package services

// Tab identifies a sidebar entry.
type Tab string

const (
	TabUsers    Tab = "users"
	TabPHP      Tab = "php"
	TabNodeJS   Tab = "nodejs"
	TabDatabase Tab = "database"
	TabSettings Tab = "settings"
)

// View is the content pane a tab shows.
type View string

const (
	ViewUsers    View = "users"
	ViewVersions View = "versions"
	ViewSettings View = "settings"
)

type MenuItem struct {
	Tab         Tab    `json:"tab"`
	Label       string `json:"label"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// MenuItems returns the sidebar with active marked.
func MenuItems(active Tab) []MenuItem {
	items := []MenuItem{
		{Tab: TabUsers, Label: "Користувачі", Icon: "users", Description: "Управління системними користувачами"},
		{Tab: TabPHP, Label: "PHP версії", Icon: "code", Description: "Вибір версій PHP"},
		{Tab: TabNodeJS, Label: "Node.js версії", Icon: "code", Description: "Вибір версій Node.js"},
		{Tab: TabDatabase, Label: "База даних", Icon: "database", Description: "Конфігурація БД"},
		{Tab: TabSettings, Label: "Параметри", Icon: "settings", Description: "Параметри системи"},
	}
	for i := range items {
		items[i].Active = items[i].Tab == active
	}
	return items
}

// ViewSelection is what the shell renders for a tab.
type ViewSelection struct {
	Tab  Tab  `json:"tab"`
	View View `json:"view"`
	// VersionFilter pre-filters the versions view; empty shows every category.
	VersionFilter string `json:"version_filter"`
}

// ResolveView maps a tab name to its view. Unknown tabs show the users view.
func ResolveView(tab string) ViewSelection {
	// The php and nodejs tabs open the versions view with their chip already
	// chosen; the operator can still pick "Все" there.
	switch Tab(tab) {
	case TabPHP:
		return ViewSelection{Tab: TabPHP, View: ViewVersions, VersionFilter: string(CategoryPHP)}
	case TabNodeJS:
		return ViewSelection{Tab: TabNodeJS, View: ViewVersions, VersionFilter: string(CategoryNodeJS)}
	case TabDatabase:
		return ViewSelection{Tab: TabDatabase, View: ViewVersions}
	case TabSettings:
		return ViewSelection{Tab: TabSettings, View: ViewSettings}
	default:
		return ViewSelection{Tab: TabUsers, View: ViewUsers}
	}
}
