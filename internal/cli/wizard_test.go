package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/iwvelando/admin-cost/internal/rates"
	"github.com/iwvelando/admin-cost/internal/session"
	"github.com/iwvelando/admin-cost/pkg/format"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runWizard(t *testing.T, sites []string, input string) (*session.Session, map[string]session.SiteInput, string, error) {
	t.Helper()
	var out bytes.Buffer
	s := session.New(sites, nil, zap.NewNop())
	w := NewWizard(strings.NewReader(input), &out, nil, zap.NewNop())
	inputs, err := w.Run(context.Background(), s)
	return s, inputs, out.String(), err
}

func TestWizard_FullRun(t *testing.T) {
	input := "100000000\n0\nA\n" +
		"n\n" +
		"y\n10\n20\n100\n"

	s, inputs, out, err := runWizard(t, nil, input)
	require.NoError(t, err)

	assert.Equal(t, session.StepResults, s.Step())
	require.Len(t, inputs, 2)
	assert.False(t, inputs["BELLIL"].HasExistingStudy)
	assert.True(t, inputs["DJEBEL M'RAKEB"].HasExistingStudy)
	assert.True(t, inputs["DJEBEL M'RAKEB"].Reductions.Preliminary.Equal(decimal.NewFromInt(20)))

	assert.True(t, s.Results().GlobalTotal().Equal(decimal.NewFromInt(12995000)))
	assert.Contains(t, out, "Results")
	assert.Contains(t, out, "BELLIL: "+format.Currency(decimal.NewFromInt(7150000)))
	assert.Contains(t, out, format.Currency(decimal.NewFromInt(12995000)))
	assert.Contains(t, out, "Project cost "+format.Currency(decimal.NewFromInt(100000000)))
}

func TestWizard_RepromptsOnInvalidInput(t *testing.T) {
	input := "abc\n-5\n100000000\n" + // base estimate
		"150\n" + // margin, clamped
		"z\nA\n" + // category
		"maybe\ny\n101\n0\n0\n50\n"

	s, inputs, out, err := runWizard(t, []string{"only"}, input)
	require.NoError(t, err)

	assert.Contains(t, out, `"abc" is not a number`)
	assert.Contains(t, out, "the amount must not be negative")
	assert.Contains(t, out, "Margin 150% is outside [0, 100], using 100%")
	assert.Contains(t, out, "invalid project category")
	assert.Contains(t, out, "Please answer y or n")
	assert.Contains(t, out, "the percentage must be between 0 and 100")

	assert.True(t, s.Project().Margin.Equal(decimal.NewFromInt(100)))
	assert.True(t, inputs["only"].Reductions.Execution.Equal(decimal.NewFromInt(50)))
	assert.True(t, inputs["only"].Reductions.Preliminaries.IsZero())
}

func TestWizard_UnpricedProjectRetriesProjectStep(t *testing.T) {
	input := "100000000\n0\nE\n" +
		"500000000\n\nE\n" + // empty margin takes the default
		"\n"

	s, _, out, err := runWizard(t, []string{"only"}, input)
	require.NoError(t, err)

	assert.Contains(t, out, "Cannot price this project")
	assert.Equal(t, rates.CategoryE, s.Project().Category)
	assert.True(t, s.Project().Margin.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 1, s.Results().Len())
}

func TestWizard_InputClosed(t *testing.T) {
	_, _, _, err := runWizard(t, nil, "100000000\n")
	require.ErrorIs(t, err, ErrInputClosed)
}

func TestWizard_LastLineWithoutNewline(t *testing.T) {
	_, inputs, _, err := runWizard(t, []string{"only"}, "100000000\n0\nA\nn")
	require.NoError(t, err)
	assert.Len(t, inputs, 1)
}

func TestWizard_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	w := NewWizard(strings.NewReader("100000000\n"), &out, nil, nil)
	_, err := w.Run(ctx, session.New(nil, nil, nil))
	require.ErrorIs(t, err, context.Canceled)
}

func TestWizard_ProgressDots(t *testing.T) {
	w := NewWizard(strings.NewReader(""), &bytes.Buffer{}, nil, nil)
	line := w.renderProgressDots([]session.SiteStatus{
		{Site: "a", State: session.SiteDone},
		{Site: "b", State: session.SiteCurrent},
		{Site: "c", State: session.SitePending},
	})
	assert.Contains(t, line, DoneDot+" a")
	assert.Contains(t, line, CurrentDot+" b")
	assert.Contains(t, line, PendingDot+" c")
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "100000000", want: "100000000"},
		{input: "100 000 000", want: "100000000"},
		{input: "12,5", want: "12.5"},
		{input: " 7.25 ", want: "7.25"},
		{input: "1 000", want: "1000"},
		{input: "-3", want: "-3"},
		{input: "", wantErr: true},
		{input: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestStyles(t *testing.T) {
	assert.Contains(t, FormatError("boom"), "boom")
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatSuccess("done"), "done")
	box := RenderBox("Title", "content")
	assert.Contains(t, box, "Title")
	assert.Contains(t, box, "content")
}
