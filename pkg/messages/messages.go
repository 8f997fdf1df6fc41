// Package messages centralizes log and API-response message literals so they can
// be reused across the code-base and kept consistent. Constants are grouped by
// functional area (server, ingestion, store, CLI).
package messages

// Log and API response message constants.
const (
	// Server
	MsgStartServer       = "starting audiodepot server"
	MsgServerStopped     = "server stopped"
	MsgShutdownRequested = "shutdown requested, draining connections"
	MsgRequestReceived   = "request received"
	MsgRequestCompleted  = "request completed"
	MsgTrustedProxies    = "found trusted proxies"
	MsgCORSEnabled       = "CORS enabled"
	MsgClearDisabled     = "bulk clear is disabled; set AUDIODEPOT_ENABLE_CLEAR=1 to enable it"

	// Ingestion
	MsgUploadStaged        = "upload staged"
	MsgUploadCommitted     = "audio file committed"
	MsgUploadRejected      = "upload rejected: not a decodable audio container"
	MsgStagingCleanupFail  = "unable to remove rejected upload"
	MsgDeclaredNameIgnored = "declared filename unusable, using generated name"
	MsgCommitConflict      = "filename taken at commit, allocating another"
	MsgCommitStoreFailure  = "record insert failed, file left in place for inspection"
	MsgCommitStranded      = "upload stranded without a record, remove it by hand"
	MsgStoreCleared        = "records and files cleared"

	// Store
	MsgStoreOpened = "record store opened"
	MsgStoreClosed = "record store closed"

	// HTTP response texts
	RespInvalidRequest      = "Invalid request"
	RespBadAudio            = "Bad audio file"
	RespFileNotFound        = "File not found"
	RespMissingName         = "Request must include name query parameter"
	RespUnsupportedEncoding = "Unsupported upload encoding; use a raw body (application/x-www-form-urlencoded) or multipart/form-data with a file field"
	RespMissingFilePart     = "Multipart upload must include a file field"
	RespPayloadTooLarge     = "Upload exceeds the configured size limit"
	RespInternalError       = "Internal server error"
)
