package domain

// Ingredient and Tag make up the shared catalog pizzas are built from.

type Ingredient struct {
	ID       int64
	Name     string
	ImageURL string
}

type Tag struct {
	ID   int64
	Name string
}

// Shop is a tenant. Its ID is the tenant_id carried in credentials and
// notification envelopes.
type Shop struct {
	ID      int64
	Name    string
	Address string
}
