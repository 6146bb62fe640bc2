package cache

const (
	KeyProducts = "products:"
	KeyCatalog  = "products:catalog:"
)
