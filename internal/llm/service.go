package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// TextService exposes the two text-generation operations the curation and
// annotation packages consume. Each call is retried under the configured
// RetryPolicy; callers only ever see the final error.
type TextService struct {
	client Client
	retry  RetryPolicy
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewTextService wraps client. A nil logger disables logging.
func NewTextService(client Client, retry RetryPolicy, logger *zap.Logger) *TextService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &TextService{
		client: client,
		retry:  retry,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Generate is the fast path, served by the standard tier.
func (s *TextService) Generate(ctx context.Context, prompt string) (string, error) {
	return s.call(ctx, "generate", prompt, TierStandard)
}

// Reason is the higher-quality path, served by the advanced tier.
func (s *TextService) Reason(ctx context.Context, prompt string) (string, error) {
	return s.call(ctx, "reason", prompt, TierAdvanced)
}

// Close releases the underlying client.
func (s *TextService) Close() error {
	return s.client.Close()
}

func (s *TextService) call(ctx context.Context, op, prompt string, tier ModelTier) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := s.retry.delay(attempt - 1)
			s.logger.Debug("retrying text generation",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(lastErr))
			if err := s.sleep(ctx, wait); err != nil {
				return "", fmt.Errorf("%s: %w (last error: %v)", op, err, lastErr)
			}
		}

		start := time.Now()
		text, err := s.client.Complete(ctx, prompt, tier)
		if err == nil {
			s.logger.Debug("text generation completed",
				zap.String("op", op),
				zap.String("tier", string(tier)),
				zap.Int("prompt_chars", len(prompt)),
				zap.Int("response_chars", len(text)),
				zap.Duration("elapsed", time.Since(start)))
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("%s failed after %d attempt(s): %w", op, s.retry.MaxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
