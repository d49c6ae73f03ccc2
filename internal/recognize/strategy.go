package recognize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scribe/internal/logging"
	"scribe/internal/services"
	"scribe/internal/services/gemini"
	"scribe/internal/textutil"
)

const (
	defaultInlineMaxBytes = 20 << 20
	defaultMaxRetries     = 3
	defaultRetryBase      = 2 * time.Second
)

// Client is the recognition backend the strategy escalates through.
// Upload and generation are separate calls so the staged tier uploads a
// unit once and reuses the file reference across retries and reframed
// requests. *gemini.Client satisfies it.
type Client interface {
	GenerateInline(ctx context.Context, instruction, request string, data []byte, mimeType string) (string, error)
	UploadFile(ctx context.Context, data []byte, mimeType, displayName string) (gemini.FileRef, error)
	GenerateFromFile(ctx context.Context, instruction, request, fileURI, mimeType string) (string, error)
}

// Params carries the instruction material for one document. The same
// params apply to every unit of that document.
type Params struct {
	Instruction  string
	Primary      string
	Alternatives []string
	DisplayName  string
}

// Strategy walks a unit through the escalation ladder: inline attempt,
// staged attempt with transient-only backoff retries, then reframed
// requests when the service refuses on content policy grounds.
type Strategy struct {
	client     Client
	logger     *slog.Logger
	inlineMax  int64
	maxRetries int
	retryBase  time.Duration
	sleeper    func(time.Duration)
}

// Option customizes the strategy.
type Option func(*Strategy)

// WithLogger attaches a logger for per-attempt progress.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Strategy) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInlineMax overrides the inline submission size boundary in bytes.
func WithInlineMax(maxBytes int64) Option {
	return func(s *Strategy) {
		if maxBytes > 0 {
			s.inlineMax = maxBytes
		}
	}
}

// WithRetryPolicy overrides the transient retry count and backoff base.
func WithRetryPolicy(maxRetries int, base time.Duration) Option {
	return func(s *Strategy) {
		if maxRetries >= 0 {
			s.maxRetries = maxRetries
		}
		if base > 0 {
			s.retryBase = base
		}
	}
}

// WithSleeper overrides how backoff sleeps are performed (useful for
// tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(s *Strategy) {
		s.sleeper = sleeper
	}
}

// New constructs a strategy around the supplied client.
func New(client Client, opts ...Option) *Strategy {
	s := &Strategy{
		client:     client,
		logger:     logging.NewNop(),
		inlineMax:  defaultInlineMaxBytes,
		maxRetries: defaultMaxRetries,
		retryBase:  defaultRetryBase,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recognize runs the escalation ladder for a single unit and always
// returns a terminal outcome; errors never escape the unit boundary.
func (s *Strategy) Recognize(ctx context.Context, unit Unit, params Params) Outcome {
	log := s.logger.With(logging.Int(logging.FieldUnit, unit.Index))

	var lastErr error

	if int64(len(unit.Data)) < s.inlineMax {
		text, err := s.client.GenerateInline(ctx, params.Instruction, params.Primary, unit.Data, unit.MIME)
		if err == nil {
			log.Debug("unit recognized", logging.String(logging.FieldTier, TierInline))
			return s.success(unit, text, TierInline)
		}
		lastErr = err
		log.Debug("inline attempt failed",
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err))

		if errors.Is(err, services.ErrContentBlocked) {
			if outcome, ok := s.escalate(ctx, unit, params, log, func(request string) (string, error) {
				return s.client.GenerateInline(ctx, params.Instruction, request, unit.Data, unit.MIME)
			}); ok {
				return outcome
			}
		}
		if canceled(ctx) {
			return s.failure(unit, lastErr)
		}
	}

	text, ref, err := s.stagedWithRetries(ctx, unit, params, log)
	if err == nil {
		log.Debug("unit recognized", logging.String(logging.FieldTier, TierStaged))
		return s.success(unit, text, TierStaged)
	}
	lastErr = err

	if errors.Is(err, services.ErrContentBlocked) && ref != nil {
		if outcome, ok := s.escalate(ctx, unit, params, log, func(request string) (string, error) {
			return s.client.GenerateFromFile(ctx, params.Instruction, request, ref.URI, unit.MIME)
		}); ok {
			return outcome
		}
	}

	log.Warn("unit failed after all tiers",
		logging.String("error_kind", services.Kind(lastErr)),
		logging.Error(lastErr))
	return s.failure(unit, lastErr)
}

// stagedWithRetries attempts the staged tier, retrying only transient
// failures with exponential backoff. Retry n sleeps base * 2^n. The
// unit is uploaded at most once per successful upload; a surviving file
// reference is returned alongside a content-block error so escalation
// can generate against it without re-uploading.
func (s *Strategy) stagedWithRetries(ctx context.Context, unit Unit, params Params, log *slog.Logger) (string, *gemini.FileRef, error) {
	var ref *gemini.FileRef
	var lastErr error
	for attempt := 0; ; attempt++ {
		text, err := func() (string, error) {
			if ref == nil {
				uploaded, uploadErr := s.client.UploadFile(ctx, unit.Data, unit.MIME, params.DisplayName)
				if uploadErr != nil {
					return "", uploadErr
				}
				ref = &uploaded
			}
			return s.client.GenerateFromFile(ctx, params.Instruction, params.Primary, ref.URI, unit.MIME)
		}()
		if err == nil {
			return text, ref, nil
		}
		lastErr = err
		if !services.Retryable(err) || attempt >= s.maxRetries || canceled(ctx) {
			return "", ref, lastErr
		}
		delay := s.retryBase << attempt
		log.Debug("transient failure, backing off",
			logging.Int("attempt", attempt+1),
			logging.Duration("delay", delay),
			logging.Error(err))
		if err := s.sleep(ctx, delay); err != nil {
			return "", ref, lastErr
		}
	}
}

// escalate tries each reframed request once against the tier that
// produced the block. Only non-empty text counts as recovery.
func (s *Strategy) escalate(ctx context.Context, unit Unit, params Params, log *slog.Logger, submit func(request string) (string, error)) (Outcome, bool) {
	for k, request := range params.Alternatives {
		if canceled(ctx) {
			return Outcome{}, false
		}
		tier := AlternativeTier(k + 1)
		text, err := submit(request)
		if err == nil {
			log.Info("unit recovered with reframed request", logging.String(logging.FieldTier, tier))
			return s.success(unit, text, tier), true
		}
		log.Debug("reframed request failed",
			logging.String(logging.FieldTier, tier),
			logging.String("error_kind", services.Kind(err)))
	}
	return Outcome{}, false
}

func (s *Strategy) success(unit Unit, text, tier string) Outcome {
	return Outcome{
		UnitIndex: unit.Index,
		Status:    StatusSuccess,
		Text:      textutil.CleanRecognizedText(text),
		Tier:      tier,
	}
}

func (s *Strategy) failure(unit Unit, err error) Outcome {
	detail := "recognition failed"
	if err != nil {
		detail = err.Error()
	}
	return Outcome{
		UnitIndex: unit.Index,
		Status:    StatusFailed,
		ErrorKind: services.Kind(err),
		Detail:    detail,
	}
}

func (s *Strategy) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if s.sleeper != nil {
		s.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func canceled(ctx context.Context) bool {
	return ctx != nil && ctx.Err() != nil
}

// DisplayName builds the staged upload name for a unit.
func DisplayName(stem string, index int) string {
	return fmt.Sprintf("%s_unit_%03d", stem, index)
}
