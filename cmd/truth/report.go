package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/truthlang/truth/truth"
)

// Severity-keyed styling for fault reports, grounded on the
// success/warning/error palette jinterlante1206-AleutianLocal's pkg/ux uses
// for its status icons.
var (
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C"))
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F"))
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("#20B9B4"))
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7A80"))
	styleOK      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7"))
)

func severityStyle(sev truth.Severity) lipgloss.Style {
	switch sev {
	case truth.SeverityError:
		return styleError
	case truth.SeverityWarning:
		return styleWarning
	default:
		return styleInfo
	}
}

func severityIcon(sev truth.Severity) string {
	switch sev {
	case truth.SeverityError:
		return "✗"
	case truth.SeverityWarning:
		return "⚠"
	default:
		return "·"
	}
}

// printFaultReport renders path's faults to w, one styled line per fault,
// using the canonical Fault.Render form (spec §6) for the message body.
func printFaultReport(w io.Writer, path string, faults []truth.Fault, docURI *truth.Uri) {
	if len(faults) == 0 {
		fmt.Fprintf(w, "%s %s\n", styleOK.Render("✓"), path)
		return
	}
	fmt.Fprintf(w, "%s\n", styleMuted.Render(path))
	for _, f := range faults {
		style := severityStyle(f.Severity)
		fmt.Fprintf(w, "  %s %s\n", style.Render(severityIcon(f.Severity)), f.Render(docURI))
	}
}

type jsonFault struct {
	Code     truth.FaultCode `json:"code"`
	Severity string          `json:"severity"`
	Message  string          `json:"message"`
	Rendered string          `json:"rendered"`
}

// writeFaultsJSON renders faults as a JSON array, one object per fault, for
// --format=json consumers.
func writeFaultsJSON(w io.Writer, faults []truth.Fault, docURI *truth.Uri) error {
	out := make([]jsonFault, len(faults))
	for i, f := range faults {
		out[i] = jsonFault{
			Code:     f.Code,
			Severity: f.Severity.String(),
			Message:  f.Message,
			Rendered: f.Render(docURI),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// hasErrorFault reports whether any fault in faults has error severity.
func hasErrorFault(faults []truth.Fault) bool {
	for _, f := range faults {
		if f.IsError() {
			return true
		}
	}
	return false
}
