package extract

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// NoLicensesPhrase is printed instead of the summary table when nothing has
// been delegated to the wallet yet.
const NoLicensesPhrase = "No licenses delegated to your burner wallet"

// ApprovalSuccessPhrase confirms a license approval.
const ApprovalSuccessPhrase = "License operation approve success"

// Status classifies a license summary.
type Status string

// Status values.
const (
	StatusReadyToReceive  Status = "ready_to_receive"
	StatusOnline          Status = "online"
	StatusOffline         Status = "offline"
	StatusPendingApproval Status = "pending_approval"
	StatusNoLicenses      Status = "no_licenses"
	StatusUnknown         Status = "unknown"
)

// LicenseSummary holds the counters of the CLI's license summary table.
type LicenseSummary struct {
	Checking       int
	Ready          int
	Offline        int
	Banned         int
	Pending        int
	TotalDelegated int

	// NoneDelegated is set when the CLI printed NoLicensesPhrase instead
	// of a table.
	NoneDelegated bool
}

// OnlineTotal is Checking plus Ready.
func (s LicenseSummary) OnlineTotal() int {
	return s.Checking + s.Ready
}

// OfflineTotal is Offline plus Banned.
func (s LicenseSummary) OfflineTotal() int {
	return s.Offline + s.Banned
}

// Status derives the classification from the counters.
func (s LicenseSummary) Status() Status {
	switch {
	case s.NoneDelegated:
		return StatusReadyToReceive
	case s.OnlineTotal() > 0:
		return StatusOnline
	case s.OfflineTotal() > 0:
		return StatusOffline
	case s.Pending > 0:
		return StatusPendingApproval
	default:
		return StatusNoLicenses
	}
}

// MarshalJSON includes the derived totals and status.
func (s LicenseSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Checking       int    `json:"checking"`
		Ready          int    `json:"ready"`
		Offline        int    `json:"offline"`
		Banned         int    `json:"banned"`
		Pending        int    `json:"pending"`
		TotalDelegated int    `json:"total_delegated"`
		OnlineTotal    int    `json:"online_total"`
		OfflineTotal   int    `json:"offline_total"`
		Status         Status `json:"status"`
	}{
		Checking:       s.Checking,
		Ready:          s.Ready,
		Offline:        s.Offline,
		Banned:         s.Banned,
		Pending:        s.Pending,
		TotalDelegated: s.TotalDelegated,
		OnlineTotal:    s.OnlineTotal(),
		OfflineTotal:   s.OfflineTotal(),
		Status:         s.Status(),
	})
}

type counterLabel struct {
	words []string
	set   func(*LicenseSummary, int)
}

var counterLabels = []counterLabel{
	{[]string{"Checking"}, func(s *LicenseSummary, n int) { s.Checking = n }},
	{[]string{"Ready"}, func(s *LicenseSummary, n int) { s.Ready = n }},
	{[]string{"Offline"}, func(s *LicenseSummary, n int) { s.Offline = n }},
	{[]string{"Banned"}, func(s *LicenseSummary, n int) { s.Banned = n }},
	{[]string{"Pending"}, func(s *LicenseSummary, n int) { s.Pending = n }},
	{[]string{"Total", "Delegated"}, func(s *LicenseSummary, n int) { s.TotalDelegated = n }},
}

// ExtractLicenseSummary parses the license summary table.
//
// NoLicensesPhrase anywhere in text takes precedence over any numbers. A
// counter line's leading token is the count and the label follows it;
// table borders count as whitespace. The first such line per label wins
// and missing labels stay zero. If no label line is recognised at all the
// summary is reported absent.
func ExtractLicenseSummary(text string) (LicenseSummary, bool) {
	if strings.Contains(text, NoLicensesPhrase) {
		return LicenseSummary{NoneDelegated: true}, true
	}

	var summary LicenseSummary
	found := make([]bool, len(counterLabels))
	recognised := false

	for _, line := range splitLines(text) {
		tokens := strings.FieldsFunc(line, isTableSpace)
		if len(tokens) < 2 {
			continue
		}
		n, err := strconv.ParseUint(tokens[0], 10, strconv.IntSize-1)
		if err != nil {
			continue
		}
		for i, label := range counterLabels {
			if found[i] || !containsWords(tokens[1:], label.words) {
				continue
			}
			label.set(&summary, int(n))
			found[i] = true
			recognised = true
		}
	}

	if !recognised {
		return LicenseSummary{}, false
	}
	return summary, true
}

// ApprovalConfirmed reports whether text contains the approval success
// message.
func ApprovalConfirmed(text string) bool {
	return strings.Contains(text, ApprovalSuccessPhrase)
}

func isTableSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '|', '│', '┃':
		return true
	}
	return false
}

// containsWords reports whether words occurs as a consecutive run in tokens,
// ignoring punctuation around each token.
func containsWords(tokens, words []string) bool {
	for i := 0; i+len(words) <= len(tokens); i++ {
		match := true
		for j, w := range words {
			if strings.TrimFunc(tokens[i+j], unicode.IsPunct) != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
