package rest_err

const (
	ErrBadRequest          = "bad_request"
	ErrInternalServerError = "internal_server_error"
	ErrNotFound            = "not_found"
	ErrUnauthorized        = "unauthorized"
	ErrForbidden           = "forbidden"
	ErrExternalProvider    = "external_provider_error"
	ErrConflict            = "conflict"
	ErrTierRequired        = "tier_required"
)
