package guard

import "github.com/webhub/admin-console/internal/core/domain"

// Menu sections.
const (
	SectionMain  = "main"
	SectionAdmin = "admin"
)

// View is a console page. Views without a Label stay off the menu.
type View struct {
	Path    string
	Name    string
	Label   string
	Section string
	Req     Requirements
}

// Views lists every console page in menu order.
var Views = []View{
	{Path: "/", Name: "home", Req: Requirements{GuestOnly: true}},
	{Path: LoginPath, Name: "login", Req: Requirements{Public: true}},
	{Path: "/signup", Name: "signup", Req: Requirements{Public: true}},

	{Path: LandingPath, Name: "dashboard", Label: "Dashboard", Section: SectionMain},
	{Path: "/dashboard/products", Name: "products", Label: "Products", Section: SectionMain},
	{Path: "/dashboard/categories", Name: "categories", Label: "Categories", Section: SectionMain},

	{Path: "/admin/users", Name: "users", Label: "Users", Section: SectionAdmin, Req: Requirements{RequireSuperAdmin: true}},
	{Path: "/admin/shops", Name: "shops", Label: "All Shops", Section: SectionAdmin, Req: Requirements{RequireAdmin: true}},
	{Path: "/admin/orders", Name: "orders", Label: "All Orders", Section: SectionAdmin, Req: Requirements{RequireAdmin: true}},
	{Path: "/admin/analytics", Name: "analytics", Label: "System Analytics", Section: SectionAdmin, Req: Requirements{RequireAdmin: true}},
}

// MenuItem is a navigation entry the session may follow.
type MenuItem struct {
	Label   string `json:"label"`
	Href    string `json:"href"`
	Section string `json:"section"`
}

// Menu returns the entries of Views that s would be allowed to render. A
// loading or anonymous session gets none.
func Menu(s domain.Session) []MenuItem {
	items := make([]MenuItem, 0, len(Views))
	for _, v := range Views {
		if v.Label == "" || !Decide(s, v.Req).Render() {
			continue
		}
		items = append(items, MenuItem{Label: v.Label, Href: v.Path, Section: v.Section})
	}
	return items
}
