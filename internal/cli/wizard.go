package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iwvelando/admin-cost/internal/estimate"
	"github.com/iwvelando/admin-cost/internal/rates"
	"github.com/iwvelando/admin-cost/internal/session"
	"github.com/iwvelando/admin-cost/pkg/constants"
	"github.com/iwvelando/admin-cost/pkg/format"
	"github.com/iwvelando/admin-cost/pkg/mathutil"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInputClosed is returned when the input ends before the run is complete.
var ErrInputClosed = errors.New("input closed before the run was complete")

// Wizard walks the user through a session on a terminal: the project first,
// then every site, then the results.
type Wizard struct {
	reader      *bufio.Reader
	writer      io.Writer
	formatter   *format.Formatter
	logger      *zap.Logger
	progressBar *progressbar.ProgressBar
}

// NewWizard creates a wizard reading answers from reader and writing prompts
// to writer.
func NewWizard(reader io.Reader, writer io.Writer, formatter *format.Formatter, logger *zap.Logger) *Wizard {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	if formatter == nil {
		formatter = format.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Wizard{
		reader:    bufio.NewReader(reader),
		writer:    writer,
		formatter: formatter,
		logger:    logger,
	}
}

// Run drives s to its results step and returns what was entered per site.
func (w *Wizard) Run(ctx context.Context, s *session.Session) (map[string]session.SiteInput, error) {
	if _, err := fmt.Fprintln(w.writer, RenderBox("Administrative cost estimate",
		fmt.Sprintf("Run %s\nSites: %s", s.ID(), strings.Join(s.Sites(), ", ")))); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	if err := w.projectStep(ctx, s); err != nil {
		return nil, err
	}

	sites := s.Sites()
	w.startProgress(len(sites))
	inputs := make(map[string]session.SiteInput, len(sites))
	for {
		site, ok := s.CurrentSite()
		if !ok {
			break
		}
		in, err := w.siteStep(ctx, s, site)
		if err != nil {
			return nil, err
		}
		inputs[site] = in
		if w.progressBar != nil {
			if err := w.progressBar.Add(1); err != nil {
				w.logger.Warn("failed to update progress bar",
					zap.String("op", "cli.Run"),
					zap.Error(err),
				)
			}
		}
	}

	if _, err := fmt.Fprintln(w.writer, w.renderResults(s.Results())); err != nil {
		return nil, fmt.Errorf("failed to write results: %w", err)
	}
	return inputs, nil
}

func (w *Wizard) projectStep(ctx context.Context, s *session.Session) error {
	for {
		base, err := w.promptDecimal(ctx, "Base estimate ("+constants.DefaultCurrencySymbol+")", nil, validateNonNegative)
		if err != nil {
			return err
		}
		defaultMargin := decimal.NewFromInt(constants.DefaultMargin)
		margin, err := w.promptDecimal(ctx, fmt.Sprintf("Margin %% [%s]", defaultMargin), &defaultMargin, nil)
		if err != nil {
			return err
		}
		if clamped := mathutil.ClampPercent(margin); !clamped.Equal(margin) {
			w.println(FormatWarning(fmt.Sprintf("Margin %s%% is outside [0, %d], using %s%%", margin, constants.MaxPercent, clamped)))
			margin = clamped
		}
		category, err := w.promptCategory(ctx)
		if err != nil {
			return err
		}

		project := estimate.Project{BaseEstimate: base, Margin: margin, Category: category}
		if err := s.SubmitProject(project); err != nil {
			w.println(FormatError(fmt.Sprintf("Cannot price this project: %v", err)))
			continue
		}
		w.println(FormatSuccess(fmt.Sprintf("Project cost %s", w.formatter.Currency(project.Cost()))))
		return nil
	}
}

func (w *Wizard) siteStep(ctx context.Context, s *session.Session, site string) (session.SiteInput, error) {
	for {
		w.println(w.renderProgressDots(s.Progress()))
		w.println(TitleStyle.Render("Site " + site))

		hasStudy, err := w.promptYesNo(ctx, "Existing study? [y/N]")
		if err != nil {
			return session.SiteInput{}, err
		}

		in := session.SiteInput{HasExistingStudy: hasStudy}
		if hasStudy {
			fields := []struct {
				label string
				dst   *decimal.Decimal
			}{
				{"Preliminaries reduction %", &in.Reductions.Preliminaries},
				{"Preliminary design reduction %", &in.Reductions.Preliminary},
				{"Execution reduction %", &in.Reductions.Execution},
			}
			for _, field := range fields {
				value, err := w.promptDecimal(ctx, field.label, &decimal.Zero, validatePercent)
				if err != nil {
					return session.SiteInput{}, err
				}
				*field.dst = value
			}
		}

		b, err := s.SubmitSite(in)
		if err != nil {
			w.println(FormatError(err.Error()))
			continue
		}
		w.println(FormatSuccess(fmt.Sprintf("%s: %s", site, w.formatter.Currency(b.Total))))
		return in, nil
	}
}

func (w *Wizard) startProgress(total int) {
	w.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w.writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("Sites"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w.writer)
		}),
	)
}

func (w *Wizard) renderProgressDots(statuses []session.SiteStatus) string {
	parts := make([]string, len(statuses))
	for i, st := range statuses {
		switch st.State {
		case session.SiteDone:
			parts[i] = SuccessStyle.Render(DoneDot + " " + st.Site)
		case session.SiteCurrent:
			parts[i] = BoldStyle.Render(CurrentDot + " " + st.Site)
		default:
			parts[i] = SubtleStyle.Render(PendingDot + " " + st.Site)
		}
	}
	return strings.Join(parts, "  ")
}

func (w *Wizard) renderResults(results *session.Results) string {
	width := 0
	for _, site := range results.Sites() {
		if len(site) > width {
			width = len(site)
		}
	}
	if width < len("Global total") {
		width = len("Global total")
	}

	var lines []string
	for _, e := range results.Entries() {
		b := e.Breakdown
		lines = append(lines,
			fmt.Sprintf("%-*s  %s", width, e.Site, BoldStyle.Render(w.formatter.Currency(b.Total))),
			SubtleStyle.Render(fmt.Sprintf("%-*s  execution %s, assistance %s, monitoring %s",
				width, "", w.formatter.Currency(b.ExecutionStudy), w.formatter.Currency(b.Assistance),
				w.formatter.Currency(b.Monitoring))),
		)
	}
	lines = append(lines, fmt.Sprintf("%-*s  %s", width, "Global total",
		BoldStyle.Render(w.formatter.Currency(results.GlobalTotal()))))
	return RenderBox("Results", strings.Join(lines, "\n"))
}

func (w *Wizard) println(s string) {
	if _, err := fmt.Fprintln(w.writer, s); err != nil {
		w.logger.Warn("failed to write to terminal",
			zap.String("op", "cli.println"),
			zap.Error(err),
		)
	}
}

func (w *Wizard) readLine(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if _, err := fmt.Fprint(w.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := w.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptDecimal asks until the answer parses and passes check. An empty
// answer gives def when it is set.
func (w *Wizard) promptDecimal(ctx context.Context, prompt string, def *decimal.Decimal, check func(decimal.Decimal) error) (decimal.Decimal, error) {
	for {
		line, err := w.readLine(ctx, prompt)
		if err != nil {
			return decimal.Zero, err
		}
		if line == "" && def != nil {
			return *def, nil
		}
		value, err := ParseAmount(line)
		if err != nil {
			w.println(FormatError(err.Error()))
			continue
		}
		if check != nil {
			if err := check(value); err != nil {
				w.println(FormatError(err.Error()))
				continue
			}
		}
		return value, nil
	}
}

func (w *Wizard) promptCategory(ctx context.Context) (rates.Category, error) {
	names := make([]string, 0, 5)
	for _, c := range rates.Categories() {
		names = append(names, string(c))
	}
	prompt := fmt.Sprintf("Category [%s]", strings.Join(names, "/"))
	for {
		line, err := w.readLine(ctx, prompt)
		if err != nil {
			return "", err
		}
		category, err := rates.ParseCategory(line)
		if err != nil {
			w.println(FormatError(err.Error()))
			continue
		}
		return category, nil
	}
}

func (w *Wizard) promptYesNo(ctx context.Context, prompt string) (bool, error) {
	for {
		line, err := w.readLine(ctx, prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "", "n", "no", "non":
			return false, nil
		case "y", "yes", "o", "oui":
			return true, nil
		}
		w.println(FormatError("Please answer y or n"))
	}
}

// ParseAmount reads a number typed by a user, accepting grouping spaces and
// a decimal comma ("100 000 000", "12,5").
func ParseAmount(input string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".").Replace(strings.TrimSpace(input))
	if cleaned == "" {
		return decimal.Zero, errors.New("a number is required")
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", input)
	}
	return value, nil
}

func validateNonNegative(v decimal.Decimal) error {
	if v.IsNegative() {
		return errors.New("the amount must not be negative")
	}
	return nil
}

func validatePercent(v decimal.Decimal) error {
	if !mathutil.IsPercent(v) {
		return fmt.Errorf("the percentage must be between 0 and %d", constants.MaxPercent)
	}
	return nil
}
