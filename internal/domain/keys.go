package domain

// KeyPrefix namespaces every store key owned by this service.
// Overridden once at startup from storage config; read-only afterwards.
var KeyPrefix = "catalogqa:"
