package commentary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// LLMClient abstracts the completion backend. Implementations should honor
// the context deadline; the generator falls back to templates on any error.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator produces audience- and locale-aware commentary for a scored
// panel. With no LLM configured it always uses the template renderer, which
// is deterministic for a given input.
type Generator struct {
	llm     LLMClient
	timeout time.Duration
	logger  *slog.Logger
}

func NewGenerator(llm LLMClient, timeout time.Duration, logger *slog.Logger) *Generator {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llm: llm, timeout: timeout, logger: logger}
}

func (g *Generator) Generate(ctx context.Context, in Input) string {
	if g.llm != nil {
		cctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		text, err := g.llm.Complete(cctx, BuildPrompt(in))
		if err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		if err != nil {
			g.logger.Warn("llm completion failed, using template commentary",
				slog.String("audience", string(in.Audience)),
				slog.String("locale", in.Locale),
				slog.String("error", err.Error()))
		}
	}
	return renderTemplate(in)
}

func renderTemplate(in Input) string {
	lb, ab := bundleFor(in.Locale, in.Audience)
	risk := in.riskLevel()
	probability := fmt.Sprintf("%.1f%%", in.Probability*100)

	var b strings.Builder
	b.WriteString(strings.ReplaceAll(ab.HeaderTemplate, "{risk}", lb.RiskLabels[risk]))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s: %s\n\n", ab.ProbabilityLabel, probability)

	b.WriteString(ab.DriversTitle)
	b.WriteString("\n")
	for _, line := range driverLines(in, ab) {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if in.Audience == AudiencePatient {
		writeSection(&b, ab.CoreTitle, strings.ReplaceAll(ab.CoreMessage[risk], "{probability}", probability))
		writeList(&b, ab.NextStepsTitle, ab.NextSteps[risk])
		writeList(&b, ab.WarningsTitle, ab.WarningSigns)
		writeList(&b, ab.SupportTitle, ab.Support)
	} else {
		writeSection(&b, ab.SynopsisTitle, ab.Synopsis[risk])
		writeList(&b, ab.ActionsTitle, ab.Actions[risk])
		writeList(&b, ab.MonitoringTitle, ab.Monitoring[risk])
	}

	writeSection(&b, ab.ReminderTitle, ab.ReminderText)
	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, title, text string) {
	if text == "" {
		return
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(text)
	b.WriteString("\n\n")
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(title)
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
