package judge

// Well-known OpenAI-compatible completion endpoints, keyed by provider id.
var providerEndpoints = map[string]string{
	"openai":     "https://api.openai.com/v1",
	"openrouter": "https://openrouter.ai/api/v1",
	"xai":        "https://api.x.ai/v1",
}

// defaultEndpoint is the hard fallback for providers without a well-known
// endpoint and no explicit apiUrl in config.
const defaultEndpoint = "https://api.openai.com/v1"

// resolveEndpoint picks the HTTP endpoint for the selected provider.
// An explicit configured URL wins; otherwise the provider id is mapped to a
// well-known endpoint, falling back to the hard default.
func resolveEndpoint(configured, providerID string) string {
	if configured != "" {
		return configured
	}
	if url, ok := providerEndpoints[providerID]; ok {
		return url
	}
	return defaultEndpoint
}
