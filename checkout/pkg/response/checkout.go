package response

// Session is the payment provider's answer; URL may be absent.
type Session struct {
	URL string `json:"url"`
}
