package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/gertd/go-pluralize"
	"github.com/rodaine/table"

	"github.com/cory-johannsen/fightsim/internal/game/bout"
)

var (
	styleClock = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleMiss = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	styleRound = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleResult = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true)

	tierStyles = map[bout.ImpactTier]lipgloss.Style{
		bout.ImpactNone:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		bout.ImpactLight:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		bout.ImpactModerate:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		bout.ImpactHeavy:       lipgloss.NewStyle().Foreground(lipgloss.Color("202")).Bold(true),
		bout.ImpactDevastating: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

var methodNames = map[bout.Method]string{
	bout.MethodKO:         "KO",
	bout.MethodTKO:        "TKO",
	bout.MethodSubmission: "submission",
	bout.MethodDecision:   "decision",
}

// renderer prints a bout as it happens.
type renderer struct {
	w      io.Writer
	plural *pluralize.Client
}

func newRenderer(w io.Writer) *renderer {
	return &renderer{w: w, plural: pluralize.NewClient()}
}

// clock formats a fight-clock reading as "R2 3:07".
func clock(round, remaining int) string {
	return fmt.Sprintf("R%d %d:%02d", round, remaining/60, remaining%60)
}

func (r *renderer) action(a bout.Action) {
	style := styleMiss
	if a.Success {
		style = tierStyles[a.Impact]
	}
	fmt.Fprintf(r.w, "%s  %s\n", styleClock.Render(clock(a.Round, a.TimeRemaining)), style.Render(a.Description))
}

func (r *renderer) roundEnd(rd bout.Round) {
	fmt.Fprintf(r.w, "%s\n", styleRound.Render(fmt.Sprintf("== End of round %d ==", rd.Number)))
}

// summary is the one-line result of a finished bout.
func (r *renderer) summary(s bout.State) string {
	actions := r.plural.Pluralize("action", len(s.Actions()), true)
	switch {
	case s.Method.Decisive():
		at := clock(s.EndRound, s.EndTimeRemaining)
		if s.Method == bout.MethodDecision {
			return fmt.Sprintf("%s wins by %s after %s (%s)",
				s.Winner, methodNames[s.Method], r.plural.Pluralize("round", s.EndRound, true), actions)
		}
		return fmt.Sprintf("%s wins by %s at %s (%s)", s.Winner, methodNames[s.Method], at, actions)
	case s.Method == bout.MethodDraw:
		return fmt.Sprintf("Draw after %s (%s)", r.plural.Pluralize("round", s.EndRound, true), actions)
	default:
		return fmt.Sprintf("No result: stopped in round %d (%s)", s.CurrentRound, actions)
	}
}

func (r *renderer) result(s bout.State) {
	fmt.Fprintf(r.w, "\n%s\n\n", styleResult.Render(r.summary(s)))
	statSheet(r.w, s)
}

// statSheet prints both fighters' bout statistics side by side.
func statSheet(w io.Writer, s bout.State) {
	a, b := s.Fighters[bout.SideA], s.Fighters[bout.SideB]
	tbl := table.New("", a.Profile.DisplayName(), b.Profile.DisplayName()).WithWriter(w)
	tbl.AddRow("Health", fmt.Sprintf("%.1f", a.Health), fmt.Sprintf("%.1f", b.Health))
	tbl.AddRow("Stamina", fmt.Sprintf("%.1f", a.Stamina), fmt.Sprintf("%.1f", b.Stamina))
	tbl.AddRow("Significant strikes", a.SignificantStrikes, b.SignificantStrikes)
	tbl.AddRow("Strikes landed", ratio(a.TotalStrikes, a.StrikesThrown), ratio(b.TotalStrikes, b.StrikesThrown))
	tbl.AddRow("Takedowns", ratio(a.TakedownsLanded, a.TakedownsAttempted), ratio(b.TakedownsLanded, b.TakedownsAttempted))
	tbl.AddRow("Submission attempts", a.SubmissionAttempts, b.SubmissionAttempts)
	tbl.AddRow("Knockdowns", a.Knockdowns, b.Knockdowns)
	tbl.AddRow("Cuts", a.Cuts, b.Cuts)
	tbl.AddRow("Damage landed", fmt.Sprintf("%.1f", a.DamageLanded), fmt.Sprintf("%.1f", b.DamageLanded))
	tbl.Print()
}

func ratio(landed, attempted int) string {
	if attempted == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d (%d%%)", landed, attempted, landed*100/attempted)
}
