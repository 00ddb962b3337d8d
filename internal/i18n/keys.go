package i18n

// Error message translation keys.
const (
	// ErrKeyInvalidRequest indicates an invalid request.
	ErrKeyInvalidRequest = "error.invalid_request"
	// ErrKeyInvalidRequestBody indicates an invalid request body.
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	// ErrKeyInternalError indicates an internal server error.
	ErrKeyInternalError = "error.internal_error"
	// ErrKeyUnauthorized indicates missing or invalid authentication.
	ErrKeyUnauthorized = "error.unauthorized"
	// ErrKeyAPIKeyRequired indicates that an API key is required.
	ErrKeyAPIKeyRequired = "error.api_key_required"
	// ErrKeyInvalidAPIKey indicates an invalid API key.
	ErrKeyInvalidAPIKey = "error.invalid_api_key"
	// ErrKeyForbidden indicates insufficient permissions.
	ErrKeyForbidden = "error.forbidden"
	// ErrKeyNotFound indicates a resource was not found.
	ErrKeyNotFound = "error.not_found"
	// ErrKeyConflict indicates a conflict with current state.
	ErrKeyConflict = "error.conflict"
	// ErrKeyIdempotencyInFlight rejects a repeat of a request still running.
	ErrKeyIdempotencyInFlight = "error.idempotency.in_flight"
	// ErrKeyIdempotencyMismatch rejects a reused key with a different body.
	ErrKeyIdempotencyMismatch = "error.idempotency.mismatch"
	// ErrKeyRateLimited refuses a client over its request budget.
	ErrKeyRateLimited = "error.rate_limited"
	// ErrKeyTimeout indicates a request timeout.
	ErrKeyTimeout = "error.timeout"
	// ErrKeyServiceUnavailable indicates an open circuit or unreachable dependency.
	ErrKeyServiceUnavailable = "error.service_unavailable"
	ErrKeySessionNotFound    = "error.session_not_found"
	ErrKeySessionFatal       = "error.session_fatal"
	ErrKeyInvalidTransition  = "error.invalid_transition"
	// ErrKeyDirectAccess indicates the wizard was opened without a quote.
	ErrKeyDirectAccess       = "error.direct_access"
	ErrKeyQuoteNotFound      = "error.quote_not_found"
	ErrKeyNoPricebooks       = "error.no_pricebooks"
	ErrKeyCatalogUnavailable = "error.catalog_unavailable"
	ErrKeySaveFailed         = "error.save.failed"
	// ErrKeySavePartial indicates phase one succeeded and phase two did not.
	ErrKeySavePartial = "error.save.partial"
	ErrKeyAnnexEmpty  = "error.annex.empty"
	// ErrKeyProformaEmpty indicates a quote without saved lines to invoice.
	ErrKeyProformaEmpty = "error.proforma.empty"
)

// Validation message keys. Messages take the field label as {0}; the
// duplicate-asset message takes the product name and id.
const (
	ValKeyPleaseCorrect  = "validation.please_correct"
	ValKeyDuplicateAsset = "validation.duplicate_asset"
	ValKeyRequired       = "validation.required"
	ValKeyNumber         = "validation.number"
	ValKeyNegative       = "validation.negative"
	ValKeyPercentRange   = "validation.percent_range"
	ValKeyQuantityMin    = "validation.quantity_min"
	ValKeyDate           = "validation.date"
	ValKeyDateTime       = "validation.datetime"
	ValKeyBoolean        = "validation.boolean"
)

// Annex pipeline progress and warning keys.
const (
	AnnexKeyPreparing     = "annex.progress.preparing"
	AnnexKeyApartment     = "annex.progress.apartment"
	AnnexKeyLobby         = "annex.progress.lobby"
	AnnexKeyStep          = "annex.progress.step"
	AnnexKeyMerging       = "annex.progress.merging"
	AnnexWarnApartmentURL = "annex.warning.apartment_urls"
	AnnexWarnApartment    = "annex.warning.apartment"
	AnnexWarnRoomTypes    = "annex.warning.room_types"
	AnnexWarnAgent        = "annex.warning.agent"
)

// Success message translation keys.
const (
	// SuccessKeyConfigurationSaved indicates a completed two-phase save.
	SuccessKeyConfigurationSaved = "success.configuration_saved"
)
