package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"webshot/internal/inference"
	"webshot/internal/log"
	"webshot/internal/model"
)

// ErrNoScreenshots is returned when analysis is requested with zero images.
var ErrNoScreenshots = errors.New("no screenshots to analyze")

const parseFallbackDetails = "error parsing response"

const systemPrompt = "You are a web design analysis assistant that identifies serious styling issues."

const screenshotPrompt = `Please analyze this website screenshot for any serious styling issues.
Focus only on identifying clear, objective styling problems such as:
- Text that is completely unreadable
- Elements that are severely misaligned
- Content that is completely cut off
- Major layout breaks
- Critical accessibility issues

Do not make subjective judgments about design preferences or potential improvements.
Simply identify if there are any serious styling problems that would affect usability.

Format your response as:
ISSUES_FOUND: [True/False]
DETAILS: [Brief description of any issues found, or "No serious styling issues found"]`

const reductionPrompt = `Below are the individual styling analyses of every screenshot taken across a website.
Synthesize them into one overall assessment of the site's styling quality.

Format your response as:
SUMMARY: [One paragraph summarizing the state of the site's styling]
COMMON_ISSUES: [Semicolon-separated list of issues that recur across pages, or "None"]
OVERALL: [Brief overall assessment of the site]`

// Analyzer turns a flat list of captured screenshots into one Report via a
// two-phase protocol: a per-image analysis call for each screenshot, then a
// single reduction call over all the raw analysis texts.
type Analyzer struct {
	client  *inference.Client
	workers int
}

func NewAnalyzer(client *inference.Client, workers int) *Analyzer {
	if workers < 1 {
		workers = 1
	}
	return &Analyzer{client: client, workers: workers}
}

// AnalyzeScreenshots runs both phases and assembles the Report. Phase 1 is
// bounded by the analyzer's worker cap; findings keep submission order via an
// index-aligned result slice. A transport failure in either phase aborts the
// whole analysis; malformed completion text does not.
func (a *Analyzer) AnalyzeScreenshots(ctx context.Context, images []model.ImageRef) (*model.Report, error) {
	if len(images) == 0 {
		return nil, ErrNoScreenshots
	}

	log.Logger.Info("analyzing screenshots", zap.Int("count", len(images)))

	rawAnalyses := make([]string, len(images))
	findings := make([]model.Finding, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, ref := range images {
		i, ref := i, ref
		g.Go(func() error {
			imageBase64, err := encodeImage(ref)
			if err != nil {
				return fmt.Errorf("failed to load screenshot %d: %w", i, err)
			}

			messages := []inference.Message{
				inference.Text("system", systemPrompt),
				inference.Text("user", screenshotPrompt),
				inference.ImagePrompt("Analyze this screenshot:", imageBase64),
			}

			text, err := a.client.Complete(gctx, messages)
			if err != nil {
				return fmt.Errorf("failed to analyze screenshot %d: %w", i, err)
			}

			rawAnalyses[i] = text
			findings[i] = parseFinding(i, text)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary, err := a.reduce(ctx, rawAnalyses)
	if err != nil {
		return nil, err
	}

	summary.AllPassed = true
	for _, f := range findings {
		if f.IssuesFound {
			summary.AllPassed = false
			break
		}
	}

	return &model.Report{Findings: findings, Summary: summary}, nil
}

// reduce issues the Phase-2 call over the concatenated Phase-1 texts.
func (a *Analyzer) reduce(ctx context.Context, rawAnalyses []string) (model.Summary, error) {
	var combined strings.Builder
	for i, raw := range rawAnalyses {
		fmt.Fprintf(&combined, "Screenshot %d:\n%s\n\n", i+1, raw)
	}

	messages := []inference.Message{
		inference.Text("system", systemPrompt),
		inference.Text("user", reductionPrompt+"\n\n"+combined.String()),
	}

	text, err := a.client.Complete(ctx, messages)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to summarize findings: %w", err)
	}

	return parseSummary(text), nil
}

// encodeImage resolves an image reference to its base64 payload, reading the
// staged file when the run used file mode.
func encodeImage(ref model.ImageRef) (string, error) {
	if ref.Base64 != "" {
		return ref.Base64, nil
	}
	data, err := os.ReadFile(ref.Path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// parseFinding locates the two labeled lines of a per-image analysis. If
// either label is missing or the flag is not a boolean, a conservative
// fallback finding is substituted rather than failing the run.
func parseFinding(index int, text string) model.Finding {
	issuesLine, issuesOK := labeledValue(text, "ISSUES_FOUND:")
	details, detailsOK := labeledValue(text, "DETAILS:")

	issuesFound, boolOK := parseBool(issuesLine)
	if !issuesOK || !detailsOK || !boolOK {
		log.Logger.Warn("malformed analysis response, using fallback finding",
			zap.Int("index", index),
		)
		return model.Finding{Index: index, IssuesFound: false, Details: parseFallbackDetails}
	}

	return model.Finding{Index: index, IssuesFound: issuesFound, Details: details}
}

// parseSummary locates the three labeled lines of the reduction response,
// substituting the conservative fallback per missing field.
func parseSummary(text string) model.Summary {
	summary, ok := labeledValue(text, "SUMMARY:")
	if !ok {
		summary = parseFallbackDetails
	}

	overall, ok := labeledValue(text, "OVERALL:")
	if !ok {
		overall = parseFallbackDetails
	}

	var commonIssues []string
	if issues, ok := labeledValue(text, "COMMON_ISSUES:"); ok && !strings.EqualFold(issues, "none") {
		for _, issue := range strings.Split(issues, ";") {
			if issue = strings.TrimSpace(issue); issue != "" {
				commonIssues = append(commonIssues, issue)
			}
		}
	}

	return model.Summary{
		Summary:           summary,
		CommonIssues:      commonIssues,
		OverallAssessment: overall,
	}
}

// labeledValue finds the first line starting with label and returns the
// trimmed remainder, with optional surrounding brackets removed.
func labeledValue(text, label string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(line), label) {
			continue
		}
		value := strings.TrimSpace(line[len(label):])
		value = strings.TrimPrefix(value, "[")
		value = strings.TrimSuffix(value, "]")
		return strings.TrimSpace(value), true
	}
	return "", false
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	default:
		return false, false
	}
}
