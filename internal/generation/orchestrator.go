package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/charforge-api/internal/domain"
)

// maxReportedErrorLength bounds each family's last error inside the
// composed terminal error so the user-visible message stays readable.
const maxReportedErrorLength = 200

// Result is a delivered artifact plus where it came from. UsedFallback is
// observability metadata, not a correctness signal.
type Result struct {
	Artifact     domain.GeneratedArtifact
	FamilyUsed   string
	UsedFallback bool
}

// OrchestratorConfig carries the tunable policy values. Zero values are
// replaced with the package defaults.
type OrchestratorConfig struct {
	RetryPolicy   RetryPolicy
	FallbackDelay time.Duration
	InvokeTimeout time.Duration
}

// Orchestrator tries a sequence of candidate models across two provider
// families and returns the first successful artifact. It holds no state
// across calls; concurrent invocations only share the providers' external
// rate-limit budget.
type Orchestrator struct {
	logger   *slog.Logger
	primary  ProviderFamily
	fallback ProviderFamily
	retry    RetryPolicy
	fbDelay  time.Duration
	timeout  time.Duration
	sleep    sleepFunc
}

// Ensure Orchestrator implements the Generator interface
var _ Generator = (*Orchestrator)(nil)

// NewOrchestrator creates an orchestrator over a primary and a fallback
// family. Either family may be nil when its credential is absent; a nil
// family is treated as immediately exhausted. At least one family must be
// usable.
func NewOrchestrator(
	logger *slog.Logger,
	primary, fallback ProviderFamily,
	cfg OrchestratorConfig,
) (*Orchestrator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if primary == nil && fallback == nil {
		return nil, fmt.Errorf("%w: no provider family configured", ErrInvalidConfig)
	}

	retry := cfg.RetryPolicy
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy()
	}
	if retry.Delay <= 0 {
		retry.Delay = DefaultRetryDelay
	}

	fbDelay := cfg.FallbackDelay
	if fbDelay <= 0 {
		fbDelay = DefaultFallbackDelay
	}

	timeout := cfg.InvokeTimeout
	if timeout <= 0 {
		timeout = DefaultInvokeTimeout
	}

	return &Orchestrator{
		logger:   logger,
		primary:  primary,
		fallback: fallback,
		retry:    retry,
		fbDelay:  fbDelay,
		timeout:  timeout,
		sleep:    contextSleep,
	}, nil
}

// Generate runs the full orchestration for one request: resolve candidates
// against the primary family, drive them in order, and fall back to the
// secondary family's default model once the primary is exhausted. Returns
// the first successful artifact or an ErrExhausted-wrapped error embedding
// both families' last failures.
func (o *Orchestrator) Generate(ctx context.Context, req *GenerationRequest) (*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidInput)
	}

	candidates := ResolveCandidates(ctx, o.primary, req.Kind, o.logger)

	primaryOutcome := o.runFamily(ctx, o.primary, candidates, req)
	if primaryOutcome.Kind == OutcomeSuccess {
		return &Result{
			Artifact:   *primaryOutcome.Artifact,
			FamilyUsed: o.primary.Name(),
		}, nil
	}

	primaryErr := primaryOutcome.Err
	o.logger.WarnContext(ctx, "primary family exhausted, switching to fallback",
		"candidates", len(candidates),
		"last_error", errorMessage(primaryErr))

	// A transient exhaustion means the credential's quota window is hot;
	// give it a short breather before spending the fallback's budget.
	if ClassifyError(primaryErr) == OutcomeTransient {
		if err := o.sleep(ctx, o.fbDelay); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransient, err)
		}
	}

	if o.fallback == nil {
		return nil, o.composeExhausted(primaryErr, fmt.Errorf("%w: no fallback family configured", ErrUnavailable))
	}

	fallbackModel := o.fallback.DefaultModel(req.Kind)
	fallbackOutcome := o.runFamily(ctx, o.fallback, []string{fallbackModel}, req)
	if fallbackOutcome.Kind == OutcomeSuccess {
		return &Result{
			Artifact:     *fallbackOutcome.Artifact,
			FamilyUsed:   o.fallback.Name(),
			UsedFallback: true,
		}, nil
	}

	return nil, o.composeExhausted(primaryErr, fallbackOutcome.Err)
}

// runFamily drives the candidate list for one family sequentially: Success
// short-circuits, NotFound and Fatal advance, Transient earns the same
// model exactly one delayed retry before advancing. Exhaustion returns a
// fatal outcome carrying the last recorded error.
func (o *Orchestrator) runFamily(
	ctx context.Context,
	family ProviderFamily,
	candidates []string,
	req *GenerationRequest,
) AttemptOutcome {
	if family == nil {
		return AttemptOutcome{
			Kind: OutcomeFatal,
			Err:  fmt.Errorf("%w: family not configured", ErrUnavailable),
		}
	}

	var lastErr error
	for _, model := range candidates {
		outcome := o.attemptModel(ctx, family, model, req)
		if outcome.Kind == OutcomeSuccess {
			return outcome
		}

		lastErr = outcome.Err
		o.logger.InfoContext(ctx, "model attempt failed, advancing to next candidate",
			"family", family.Name(),
			"model", model,
			"outcome", outcome.Kind.String(),
			"error", errorMessage(outcome.Err))

		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no candidate models", ErrUnavailable)
	}
	return AttemptOutcome{Kind: OutcomeFatal, Err: lastErr}
}

// attemptModel invokes one model under the retry policy: a transient first
// attempt is retried once after the fixed delay, and the retry's outcome is
// final for this model even when the retry fails transiently again.
func (o *Orchestrator) attemptModel(
	ctx context.Context,
	family ProviderFamily,
	model string,
	req *GenerationRequest,
) AttemptOutcome {
	outcome := o.invokeOnce(ctx, family, model, req)
	if outcome.Kind != OutcomeTransient {
		return outcome
	}

	attempts := o.retry.MaxAttempts
	if attempts > 2 {
		// A model is never retried more than once.
		attempts = 2
	}
	if attempts < 2 {
		return outcome
	}

	o.logger.InfoContext(ctx, "transient failure, retrying model after delay",
		"family", family.Name(),
		"model", model,
		"delay", o.retry.Delay.String())

	if err := o.sleep(ctx, o.retry.Delay); err != nil {
		return AttemptOutcome{Kind: OutcomeTransient, Err: fmt.Errorf("%w: %v", ErrTransient, err)}
	}

	return o.invokeOnce(ctx, family, model, req)
}

// invokeOnce makes a single provider call under the per-call timeout and
// parses the raw body through the shape matchers.
func (o *Orchestrator) invokeOnce(
	ctx context.Context,
	family ProviderFamily,
	model string,
	req *GenerationRequest,
) AttemptOutcome {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	raw, err := family.Invoke(callCtx, model, req.RawPrompt)
	if err != nil {
		return failureOutcome(err)
	}

	artifact, err := ParseArtifact(req.Kind, raw.Body)
	if err != nil {
		return failureOutcome(fmt.Errorf("%s model %s: %w", family.Name(), model, err))
	}

	return successOutcome(artifact)
}

// composeExhausted builds the terminal error embedding both families' last
// errors, each truncated, plus a remediation hint that distinguishes an
// all-quota-exhausted failure from a generic one.
func (o *Orchestrator) composeExhausted(primaryErr, fallbackErr error) error {
	hint := "check provider status and credentials before retrying"
	if ClassifyError(primaryErr) == OutcomeTransient && ClassifyError(fallbackErr) == OutcomeTransient {
		hint = "both providers report exhausted quota; wait a few minutes and retry"
	}

	return &ExhaustedError{
		Primary:  truncateMessage(errorMessage(primaryErr), maxReportedErrorLength),
		Fallback: truncateMessage(errorMessage(fallbackErr), maxReportedErrorLength),
		Hint:     hint,
	}
}

func errorMessage(err error) string {
	if err == nil {
		return "unknown failure"
	}
	return err.Error()
}

// truncateMessage bounds a message to maxLen characters, appending "..."
// when truncated.
func truncateMessage(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
