package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/erd-studio/engine/internal/services"
	appErr "github.com/erd-studio/engine/pkg/errors"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

// GetExitCode maps an error to the process exit code: not-found and invalid
// input are command errors, everything else a failure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch appErr.CodeOf(err) {
	case appErr.CodeNotFound, appErr.CodeInvalid:
		return ExitCommandError
	}
	return ExitFailure
}

// CLIResponse is the JSON output envelope.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// textRenderer is implemented by results with a human-readable form.
type textRenderer interface {
	renderText(w io.Writer) error
}

func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.writeJSON(CLIResponse{Status: "ok", Data: data})
	}
	if r, ok := data.(textRenderer); ok {
		return r.renderText(f.Writer)
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error prints err in the configured format and returns it for the exit code.
func (f *OutputFormatter) Error(err error) error {
	if f.Format == "json" {
		var ae *appErr.AppError
		msg := err.Error()
		if errors.As(err, &ae) {
			msg = ae.Message
		}
		_ = f.writeJSON(CLIResponse{Status: "error", Error: &CLIError{Code: string(appErr.CodeOf(err)), Message: msg}})
	} else {
		_, _ = fmt.Fprintf(f.Writer, "error: %v\n", err)
	}
	return err
}

func (f *OutputFormatter) writeJSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type projectList []services.ProjectSummary

func (l projectList) renderText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTABLES\tRELATIONS\tUPDATED")
	for _, p := range l {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", p.ID, p.Name, p.Tables, p.Relations, p.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

type projectCreated struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Tables    int    `json:"tables"`
	Relations int    `json:"relations"`
}

func (p projectCreated) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "created %s (%s): %d tables, %d relations\n", p.ID, p.Name, p.Tables, p.Relations)
	return err
}

type projectDeleted struct {
	ID string `json:"id"`
}

func (p projectDeleted) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "deleted %s\n", p.ID)
	return err
}

type projectRepaired struct {
	ID      string `json:"id"`
	Changed int    `json:"changed"`
}

func (p projectRepaired) renderText(w io.Writer) error {
	if p.Changed == 0 {
		_, err := fmt.Fprintf(w, "%s: all edges already routed\n", p.ID)
		return err
	}
	_, err := fmt.Fprintf(w, "%s: re-routed %d edges\n", p.ID, p.Changed)
	return err
}
