package domain

// CatalogItem is the master record the ledger validates against. The catalog
// owns item identity and the authoritative total quantity; the ledger only
// references it.
type CatalogItem struct {
	ID            string
	Name          string
	Type          string
	TotalQuantity int
}
