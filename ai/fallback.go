package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kairomed/medicine-info-api/interfaces"
	"github.com/kairomed/medicine-info-api/logging"
	"github.com/kairomed/medicine-info-api/medicine"
	"github.com/kairomed/medicine-info-api/metrics"
)

// Compile-time check to ensure Fallback implements InfoFallback
var _ interfaces.InfoFallback = (*Fallback)(nil)

// Policy decides what happens when the model says it does not know a medicine
type Policy string

const (
	// PolicyDegrade keeps whatever could be parsed, with sentinel fields
	PolicyDegrade Policy = "degrade"
	// PolicyStrict turns an "unknown" answer into medicine.ErrUnknownMedicine
	PolicyStrict Policy = "strict"
)

// DefaultTimeout bounds a single completion call
const DefaultTimeout = 20 * time.Second

// Fallback asks a text generator about a medicine, once, and parses the answer
type Fallback struct {
	generator interfaces.TextGenerator
	timeout   time.Duration
	policy    Policy
}

// NewFallback creates a fallback. A nil generator means no API key was
// configured: every Describe call then fails with medicine.ErrConfiguration.
func NewFallback(generator interfaces.TextGenerator, timeout time.Duration, policy Policy) *Fallback {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if policy != PolicyStrict {
		policy = PolicyDegrade
	}
	return &Fallback{
		generator: generator,
		timeout:   timeout,
		policy:    policy,
	}
}

// Enabled reports whether an AI provider is configured
func (f *Fallback) Enabled() bool {
	return f.generator != nil
}

// Describe resolves name through the generative API
func (f *Fallback) Describe(ctx context.Context, name string) (medicine.InfoResult, error) {
	if f.generator == nil {
		metrics.AIFallbackTotal.WithLabelValues("not_configured").Inc()
		return medicine.InfoResult{}, fmt.Errorf("%w: AI API key not set", medicine.ErrConfiguration)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	text, err := f.generator.Generate(ctx, BuildPrompt(name))
	metrics.AIFallbackDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AIFallbackTotal.WithLabelValues("error").Inc()
		logging.Error("AI fallback request failed", "medicine", name, "error", err)
		return medicine.InfoResult{}, fmt.Errorf("%w: %v", medicine.ErrAIProvider, err)
	}

	if strings.TrimSpace(text) == "" {
		metrics.AIFallbackTotal.WithLabelValues("empty").Inc()
		logging.Warn("AI fallback returned an empty response", "medicine", name)
		return medicine.InfoResult{}, fmt.Errorf("%w: empty response", medicine.ErrAIProvider)
	}

	if f.policy == PolicyStrict && LooksUnknown(text) {
		metrics.AIFallbackTotal.WithLabelValues("unknown").Inc()
		return medicine.InfoResult{}, fmt.Errorf("%w: %s", medicine.ErrUnknownMedicine, name)
	}

	metrics.AIFallbackTotal.WithLabelValues("ok").Inc()
	return ParseResponse(text).ToInfoResult(), nil
}
