package providers

// Dialect identifies the request/response shape family a provider speaks.
type Dialect string

const (
	// DialectOpenAI is the OpenAI-compatible chat-completions shape:
	// bearer token in the Authorization header, {choices:[{message:{content}}]}.
	DialectOpenAI Dialect = "openai"

	// DialectGemini is the Gemini-native generateContent shape:
	// API key as a query parameter, {candidates:[{content:{parts:[{text}]}}]}.
	DialectGemini Dialect = "gemini"
)

// Generation parameters applied to every outgoing request regardless of dialect.
const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1024
)

// Descriptor holds the static, compiled-in configuration for one provider.
// Descriptors are read-only; they are never mutated at runtime.
type Descriptor struct {
	// Name is the provider identifier (e.g., "groq", "gemini")
	Name string

	// URL is the full completion endpoint
	URL string

	// Dialect selects the request/response translation
	Dialect Dialect

	// Model is the provider-side model identifier. Empty for providers
	// whose model is encoded in the endpoint path.
	Model string
}

// CascadeOrder is the fixed priority order in which providers are tried.
// The first provider with a usable credential that answers successfully wins.
var CascadeOrder = []string{
	"gemini",
	"groq",
	"openrouter",
	"together",
	"mistral",
	"deepseek",
	"openai",
}

// descriptors maps provider name to its static configuration.
var descriptors = map[string]Descriptor{
	"gemini": {
		Name:    "gemini",
		URL:     "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent",
		Dialect: DialectGemini,
	},
	"groq": {
		Name:    "groq",
		URL:     "https://api.groq.com/openai/v1/chat/completions",
		Dialect: DialectOpenAI,
		Model:   "llama-3.3-70b-versatile",
	},
	"openrouter": {
		Name:    "openrouter",
		URL:     "https://openrouter.ai/api/v1/chat/completions",
		Dialect: DialectOpenAI,
		Model:   "meta-llama/llama-3.3-70b-instruct",
	},
	"together": {
		Name:    "together",
		URL:     "https://api.together.xyz/v1/chat/completions",
		Dialect: DialectOpenAI,
		Model:   "meta-llama/Llama-3.3-70B-Instruct-Turbo",
	},
	"mistral": {
		Name:    "mistral",
		URL:     "https://api.mistral.ai/v1/chat/completions",
		Dialect: DialectOpenAI,
		Model:   "mistral-small-latest",
	},
	"deepseek": {
		Name:    "deepseek",
		URL:     "https://api.deepseek.com/chat/completions",
		Dialect: DialectOpenAI,
		Model:   "deepseek-chat",
	},
	"openai": {
		Name:    "openai",
		URL:     "https://api.openai.com/v1/chat/completions",
		Dialect: DialectOpenAI,
		Model:   "gpt-4o-mini",
	},
}

// GetDescriptor returns the static descriptor for a provider name.
func GetDescriptor(name string) (Descriptor, bool) {
	d, ok := descriptors[name]
	return d, ok
}

// ListDescriptors returns the descriptors in cascade priority order.
func ListDescriptors() []Descriptor {
	out := make([]Descriptor, 0, len(CascadeOrder))
	for _, name := range CascadeOrder {
		out = append(out, descriptors[name])
	}
	return out
}
