package dialog

import "github.com/guhanims/intakebot/internal/models"

// Product is one selectable product in a category's list menu.
type Product struct {
	ID          string
	Title       string
	Description string
}

// Category is one product category offered on the category button menu.
// A category without products skips the list-menu step and goes straight to
// contact collection.
type Category struct {
	ID       string
	Title    string
	Products []Product
}

// Catalog holds the product categories offered by the dialogue.
type Catalog struct {
	categories []Category
}

// NewCatalog creates a catalog from the given categories.
func NewCatalog(categories []Category) Catalog {
	return Catalog{categories: categories}
}

// DefaultCatalog returns the built-in product catalog.
func DefaultCatalog() Catalog {
	return NewCatalog([]Category{
		{
			ID:    "machinery",
			Title: "Industrial Machinery",
			Products: []Product{
				{ID: "machinery_cnc_mill", Title: "CNC Milling Machine", Description: "3- and 5-axis milling centers"},
				{ID: "machinery_lathe", Title: "Precision Lathe", Description: "High-speed turning machines"},
				{ID: "machinery_press", Title: "Hydraulic Press", Description: "10t to 400t press lines"},
			},
		},
		{
			ID:    "components",
			Title: "Machine Components",
			Products: []Product{
				{ID: "components_bearings", Title: "Industrial Bearings", Description: "Roller and spindle bearings"},
				{ID: "components_gearboxes", Title: "Gearboxes", Description: "Planetary and worm gear units"},
				{ID: "components_spindles", Title: "Spindle Assemblies", Description: "Replacement spindle units"},
			},
		},
		{
			ID:    "tools",
			Title: "Precision Tools",
			Products: []Product{
				{ID: "tools_endmills", Title: "Carbide End Mills", Description: "Coated carbide cutting tools"},
				{ID: "tools_inserts", Title: "Turning Inserts", Description: "ISO turning and grooving inserts"},
				{ID: "tools_gauges", Title: "Measuring Gauges", Description: "Bore and height gauges"},
			},
		},
	})
}

// Category looks up a category by its button selection identifier.
func (c Catalog) Category(id string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// Product looks up a product by its list row identifier across all categories.
func (c Catalog) Product(id string) (Product, bool) {
	for _, cat := range c.categories {
		for _, p := range cat.Products {
			if p.ID == id {
				return p, true
			}
		}
	}
	return Product{}, false
}

// Buttons renders the categories as a reply-button menu.
func (c Catalog) Buttons() []models.Button {
	buttons := make([]models.Button, 0, len(c.categories))
	for _, cat := range c.categories {
		buttons = append(buttons, models.Button{ID: cat.ID, Title: cat.Title})
	}
	return buttons
}

// ListSections renders a category's products as a single list-menu section.
func (c Catalog) ListSections(cat Category) []models.ListSection {
	rows := make([]models.ListRow, 0, len(cat.Products))
	for _, p := range cat.Products {
		rows = append(rows, models.ListRow{ID: p.ID, Title: p.Title, Description: p.Description})
	}
	return []models.ListSection{{Title: cat.Title, Rows: rows}}
}
