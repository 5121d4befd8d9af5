package schema

// ProfilesTable represents the 'profiles' table
type ProfilesTable struct {
	Table     string
	ID        string
	Email     string
	Name      string
	Role      string
	CreatedAt string
	UpdatedAt string
}

// Profiles is the schema definition for profiles
var Profiles = ProfilesTable{
	Table:     "profiles",
	ID:        "id",
	Email:     "email",
	Name:      "name",
	Role:      "role",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
}

// Columns returns all standard column names
func (t ProfilesTable) Columns() []string {
	return []string{t.ID, t.Email, t.Name, t.Role, t.CreatedAt, t.UpdatedAt}
}

// ProductsTable represents the 'products' table
type ProductsTable struct {
	Table       string
	ID          string
	Name        string
	Description string
	Price       string
	OldPrice    string
	Category    string
	Image       string
	IsNew       string
	IsFeatured  string
	SellerID    string
	Rating      string
	Reviews     string
	CreatedAt   string
	UpdatedAt   string
}

// Products is the schema definition for products
var Products = ProductsTable{
	Table:       "products",
	ID:          "id",
	Name:        "name",
	Description: "description",
	Price:       "price",
	OldPrice:    "old_price",
	Category:    "category",
	Image:       "image",
	IsNew:       "is_new",
	IsFeatured:  "is_featured",
	SellerID:    "seller_id",
	Rating:      "rating",
	Reviews:     "reviews",
	CreatedAt:   "created_at",
	UpdatedAt:   "updated_at",
}

// Columns returns all standard column names
func (t ProductsTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Description, t.Price, t.OldPrice, t.Category, t.Image,
		t.IsNew, t.IsFeatured, t.SellerID, t.Rating, t.Reviews, t.CreatedAt, t.UpdatedAt,
	}
}

// OrdersTable represents the 'orders' table
type OrdersTable struct {
	Table     string
	ID        string
	BuyerID   string
	Status    string
	Total     string
	CreatedAt string
	UpdatedAt string
}

// Orders is the schema definition for orders
var Orders = OrdersTable{
	Table:     "orders",
	ID:        "id",
	BuyerID:   "buyer_id",
	Status:    "status",
	Total:     "total",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
}

// Columns returns all standard column names
func (t OrdersTable) Columns() []string {
	return []string{t.ID, t.BuyerID, t.Status, t.Total, t.CreatedAt, t.UpdatedAt}
}

// OrderItemsTable represents the 'order_items' table
type OrderItemsTable struct {
	Table           string
	ID              string
	OrderID         string
	ProductID       string
	Quantity        string
	PriceAtPurchase string
	CreatedAt       string
}

// OrderItems is the schema definition for order_items
var OrderItems = OrderItemsTable{
	Table:           "order_items",
	ID:              "id",
	OrderID:         "order_id",
	ProductID:       "product_id",
	Quantity:        "quantity",
	PriceAtPurchase: "price_at_purchase",
	CreatedAt:       "created_at",
}

// Columns returns all standard column names
func (t OrderItemsTable) Columns() []string {
	return []string{t.ID, t.OrderID, t.ProductID, t.Quantity, t.PriceAtPurchase, t.CreatedAt}
}
