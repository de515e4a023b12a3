package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/checkerctl/checkerctl/internal/extract"
	"github.com/checkerctl/checkerctl/internal/session"
	"github.com/checkerctl/checkerctl/internal/wallet"
)

// Format selects how a report is written.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("invalid format %q: valid values are text, json", s)
}

// WriteJSON writes v as compact JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Executable describes the checker binary on disk.
type Executable struct {
	Path    string `json:"path"`
	Present bool   `json:"present"`
	Problem string `json:"problem,omitempty"`
}

// Service describes the systemd unit.
type Service struct {
	Unit   string `json:"unit"`
	State  string `json:"state"`
	Active bool   `json:"active"`
}

// Status is the output of the status command.
type Status struct {
	Executable Executable    `json:"executable"`
	Wallet     wallet.Status `json:"wallet"`
	Service    Service       `json:"service"`
}

// Healthy reports whether every part is in place.
func (s Status) Healthy() bool {
	return s.Executable.Present && s.Wallet.Complete && s.Service.Active
}

// WriteStatus renders s as text.
func WriteStatus(p *Printer, s Status) {
	if s.Executable.Present {
		p.OK("checker CLI at %s", s.Executable.Path)
	} else {
		p.Fail("checker CLI missing at %s: %s", s.Executable.Path, s.Executable.Problem)
	}

	switch {
	case s.Wallet.Complete:
		p.OK("wallet at %s", s.Wallet.Path)
		if s.Wallet.Modified != nil {
			p.Info("saved %s", s.Wallet.Modified.Format(time.RFC3339))
		}
	case s.Wallet.Exists:
		p.Warn("wallet at %s is incomplete: %s", s.Wallet.Path, s.Wallet.Problem)
	default:
		p.Fail("no wallet at %s", s.Wallet.Path)
	}

	if s.Service.Active {
		p.OK("service %s is %s", s.Service.Unit, s.Service.State)
	} else {
		p.Fail("service %s is %s", s.Service.Unit, s.Service.State)
	}
}

// WriteLicenses renders a license summary as text.
func WriteLicenses(p *Printer, s extract.LicenseSummary) {
	status := s.Status()
	switch status {
	case extract.StatusOnline, extract.StatusReadyToReceive:
		p.OK("licenses: %s", status)
	case extract.StatusPendingApproval, extract.StatusNoLicenses:
		p.Warn("licenses: %s", status)
	default:
		p.Fail("licenses: %s", status)
	}
	if s.NoneDelegated {
		p.Info("no licenses delegated to the burner wallet yet")
		return
	}
	p.Field("checking", s.Checking)
	p.Field("ready", s.Ready)
	p.Field("offline", s.Offline)
	p.Field("banned", s.Banned)
	p.Field("pending", s.Pending)
	p.Field("total delegated", s.TotalDelegated)
	p.Field("online total", s.OnlineTotal())
	p.Field("offline total", s.OfflineTotal())
}

// Heartbeat states.
const (
	HeartbeatRunning = "running"
	HeartbeatError   = "error"
)

// Heartbeat is one periodic health report. The private key is never
// included.
type Heartbeat struct {
	Status    string                  `json:"status"`
	CheckedAt time.Time               `json:"checked_at"`
	PublicKey string                  `json:"public_key,omitempty"`
	Licenses  *extract.LicenseSummary `json:"licenses,omitempty"`
	Approved  bool                    `json:"approved"`
	Service   Service                 `json:"service"`
	Errors    []string                `json:"errors,omitempty"`
}

// WriteHeartbeat renders h as text.
func WriteHeartbeat(p *Printer, h Heartbeat) {
	if h.Status == HeartbeatRunning {
		p.OK("heartbeat %s", h.CheckedAt.Format(time.RFC3339))
	} else {
		p.Fail("heartbeat %s", h.CheckedAt.Format(time.RFC3339))
	}
	if h.PublicKey != "" {
		p.Field("public key", h.PublicKey)
	}
	if h.Licenses != nil {
		p.Field("licenses", h.Licenses.Status())
		p.Field("online", h.Licenses.OnlineTotal())
		p.Field("offline", h.Licenses.OfflineTotal())
		p.Field("pending", h.Licenses.Pending)
	}
	if h.Approved {
		p.Field("approved", "pending licenses approved")
	}
	p.Field("service", h.Service.State)
	for _, e := range h.Errors {
		p.Warn("%s", e)
	}
}

// Session is the debug view of one driver run.
type Session struct {
	ID         string             `json:"id"`
	Script     string             `json:"script"`
	Completion session.Completion `json:"completion"`
	ExitCode   int                `json:"exit_code"`
	Success    bool               `json:"success"`
	Duration   string             `json:"duration"`
	Missed     []string           `json:"missed,omitempty"`
	Stdout     []string           `json:"stdout"`
	Stderr     string             `json:"stderr,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// NewSession builds the debug view of res. runErr is the driver error,
// if any.
func NewSession(script string, res *session.Result, runErr error) Session {
	s := Session{Script: script, Stdout: []string{}}
	if runErr != nil {
		s.Error = runErr.Error()
	}
	if res == nil {
		return s
	}
	s.ID = res.ID
	s.Success = res.Success
	s.Duration = res.Duration.Round(time.Millisecond).String()
	s.Missed = res.Missed
	if t := res.Transcript; t != nil {
		s.Completion = t.Completion()
		s.ExitCode = t.ExitCode()
		s.Stdout = t.Lines()
		s.Stderr = t.Stderr()
	}
	return s
}

// WriteSession renders s as text: the raw transcript followed by a
// summary.
func WriteSession(p *Printer, s Session) {
	p.Section("--- stdout ---")
	for _, line := range s.Stdout {
		fmt.Fprintln(p.Writer(), line)
	}
	if s.Stderr != "" {
		p.Section("--- stderr ---")
		fmt.Fprint(p.Writer(), s.Stderr)
		if !strings.HasSuffix(s.Stderr, "\n") {
			fmt.Fprintln(p.Writer())
		}
	}
	p.Section("--- session ---")
	if s.ID != "" {
		p.Field("id", s.ID)
	}
	p.Field("script", s.Script)
	p.Field("completion", s.Completion)
	p.Field("exit code", s.ExitCode)
	p.Field("duration", s.Duration)
	p.Field("lines", len(s.Stdout))
	for _, m := range s.Missed {
		p.Warn("marker %q not seen", m)
	}
	switch {
	case s.Error != "":
		p.Fail("%s", s.Error)
	case s.Success:
		p.OK("session completed")
	default:
		p.Fail("session did not complete")
	}
}
