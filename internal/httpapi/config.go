package httpapi

// maxBodyBytes controls the maximum allowed request body size for JSON
// endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// eventBufferSize is the per-subscriber buffer for SSE and websocket
// streams. Slow consumers lose events past this depth.
var eventBufferSize = 256

// SetEventBufferSize configures the per-subscriber event buffer.
func SetEventBufferSize(n int) {
	if n <= 0 {
		eventBufferSize = 256
		return
	}
	eventBufferSize = n
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added
// and cross-origin websocket upgrades are refused.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
