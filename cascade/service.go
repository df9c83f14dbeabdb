package cascade

import (
	"context"
	"errors"
	"net/http"

	"github.com/upb/llm-cascade/providers"
	"go.uber.org/zap"
)

// ErrAllProvidersFailed is returned when every provider in the cascade was
// either skipped for lacking a credential or failed after retries. It
// deliberately names no individual provider; per-provider detail is logged,
// not surfaced.
var ErrAllProvidersFailed = errors.New(
	"all providers failed: check your API keys, network connectivity, and provider status")

// completer is the single-call surface the cascade drives. *providers.Adapter
// satisfies it; tests substitute their own.
type completer interface {
	Complete(ctx context.Context, desc providers.Descriptor, apiKey string, messages []providers.Message) (string, error)
}

// Service tries providers in a fixed priority order until one succeeds.
// Providers without a usable credential are skipped; a provider failure never
// aborts the cascade. The credential map is read-only for the lifetime of the
// service, so concurrent calls are safe.
type Service struct {
	credentials map[string]string
	order       []string
	descriptors map[string]providers.Descriptor
	adapter     completer
	httpClient  *http.Client
	retry       RetryConfig
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithOrder overrides the default cascade priority order.
func WithOrder(order []string) Option {
	return func(s *Service) {
		s.order = order
	}
}

// WithRetryConfig overrides the default retry configuration.
func WithRetryConfig(config RetryConfig) Option {
	return func(s *Service) {
		s.retry = config
	}
}

// WithDescriptors overrides the compiled-in descriptor table. Used in tests
// to point providers at local endpoints.
func WithDescriptors(descriptors map[string]providers.Descriptor) Option {
	return func(s *Service) {
		s.descriptors = descriptors
	}
}

// WithAdapter overrides the provider adapter. Used in tests.
func WithAdapter(adapter completer) Option {
	return func(s *Service) {
		s.adapter = adapter
	}
}

// WithHTTPClient sets the HTTP client used by the default adapter.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.adapter = nil
		s.httpClient = client
	}
}

// NewService creates a cascade service over the given credential map.
// Credentials may be empty or missing; those providers are skipped.
func NewService(credentials map[string]string, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		credentials: credentials,
		order:       providers.CascadeOrder,
		retry:       DefaultRetryConfig(),
		logger:      logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.adapter == nil {
		s.adapter = providers.NewAdapter(s.httpClient, logger)
	}

	return s
}

// Complete runs the conversation through the cascade and returns the first
// successful provider's normalized result. Only total exhaustion reaches the
// caller, as ErrAllProvidersFailed.
func (s *Service) Complete(ctx context.Context, messages []providers.Message) (*providers.Result, error) {
	failures := 0

	for _, name := range s.order {
		desc, ok := s.descriptor(name)
		if !ok {
			continue
		}

		apiKey := s.credentials[name]
		if apiKey == "" {
			// Not an attempt, not a failure: just not configured.
			s.logger.Debug("skipping provider without credential",
				zap.String("provider", name))
			continue
		}

		s.logger.Info("trying provider", zap.String("provider", name))

		content, err := executeWithRetry(ctx, s.retry, s.logger, name, func(ctx context.Context) (string, error) {
			return s.adapter.Complete(ctx, desc, apiKey, messages)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			s.logger.Warn("provider failed, falling through",
				zap.String("provider", name),
				zap.Error(err))
			continue
		}

		s.logger.Info("provider succeeded", zap.String("provider", name))
		return &providers.Result{
			Content:  content,
			Provider: name,
		}, nil
	}

	s.logger.Error("cascade exhausted without success",
		zap.Int("providers_failed", failures))
	return nil, ErrAllProvidersFailed
}

func (s *Service) descriptor(name string) (providers.Descriptor, bool) {
	if s.descriptors != nil {
		d, ok := s.descriptors[name]
		return d, ok
	}
	return providers.GetDescriptor(name)
}

// ConfiguredProviders returns, in priority order, the providers that have a
// usable credential and would participate in the cascade.
func (s *Service) ConfiguredProviders() []string {
	out := make([]string, 0, len(s.order))
	for _, name := range s.order {
		if s.credentials[name] != "" {
			out = append(out, name)
		}
	}
	return out
}
