package types

// SuccessEnvelope wraps every 2xx storefront response body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of an error code surfaced to storefront clients.
// Details carries typed payloads such as the available quantity on
// insufficient-stock rejections.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
