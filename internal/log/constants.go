package log

const (
	KeyAppName       = "app"
	KeyTag           = "tag"
	KeyProcess       = "process"
	KeyRequestID     = "requestId"
	KeyConfig        = "config"
	KeyToken         = "token"
	KeyUserID        = "userId"
	KeyProductID     = "productId"
	KeyLineID        = "lineId"
	KeyEntryID       = "entryId"
	KeyQuantity      = "quantity"
	KeyCartCount     = "cartCount"
	KeyWishlisted    = "wishlisted"
	KeyCacheKey      = "cacheKey"
	KeyCategory      = "category"
	KeySortBy        = "sortBy"
	KeyRedirectURL   = "redirectUrl"
	KeyLineItems     = "lineItems"
	KeyDbURL         = "dbUrl"
	KeyHeader        = "header"
	KeyBody          = "body"
	KeyRequest       = "request"
	KeyRequestBody   = "requestBody"
	KeyRequestHeader = "requestHeader"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyPathValues    = "pathValues"
	KeyTraceID       = "traceId"
	KeySpanID        = "spanId"
)
