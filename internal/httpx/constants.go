package httpx

const (
	HeaderContentType = "Content-Type"
	HeaderValueJson   = "application/json"

	KeyHeaderRequestID = "X-Request-Id"
)
