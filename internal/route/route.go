// Package route models hub navigation state and its location encoding.
package route

type Kind int

const (
	Catalog Kind = iota
	Module
)

func (k Kind) String() string {
	switch k {
	case Catalog:
		return "catalog"
	case Module:
		return "module"
	default:
		return "unknown"
	}
}

// Route is either the catalog or a single active module.
type Route struct {
	Kind Kind
	ID   string
}

func CatalogRoute() Route { return Route{Kind: Catalog} }

func ModuleRoute(id string) Route { return Route{Kind: Module, ID: id} }

func (r Route) IsCatalog() bool { return r.Kind == Catalog }

func (r Route) String() string {
	if r.Kind == Module {
		return "module:" + r.ID
	}
	return r.Kind.String()
}
