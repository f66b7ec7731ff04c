package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"igreport/pkg/errors"
	"igreport/pkg/history"
	"igreport/pkg/instagram"
	"igreport/pkg/logger"
	"igreport/pkg/report"
	"igreport/pkg/scanner"
	"igreport/pkg/stats"
)

// DefaultHistoryLimit is how many snapshots profile_history returns by default
const DefaultHistoryLimit = 10

// ProfileScanner runs scans. *scanner.Scanner satisfies it.
type ProfileScanner interface {
	Scan(ctx context.Context, req scanner.Request) (*stats.ProfileStats, error)
	Compare(ctx context.Context, self, competitor scanner.Request) (*stats.ProfileStats, *stats.ProfileStats, error)
}

// SessionSource resolves a stored session. *auth.Manager satisfies it.
type SessionSource interface {
	Session(username string) (*instagram.Session, error)
}

// Handlers contains the tool handlers
type Handlers struct {
	scanner  ProfileScanner
	sessions SessionSource
	history  history.Store
	logger   logger.Logger
	now      func() time.Time
}

// NewHandlers creates handlers around a scanner
func NewHandlers(s ProfileScanner, opts ...Option) *Handlers {
	h := &Handlers{
		scanner: s,
		logger:  logger.NewNopLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleScanProfile handles the scan_profile tool
func (h *Handlers) HandleScanProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username, err := req.RequireString("username")
	if err != nil || strings.TrimSpace(username) == "" {
		return mcp.NewToolResultError("username is required"), nil
	}
	format, err := formatArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	profile, err := h.scanner.Scan(ctx, h.request(username, req.GetInt("limit", 0)))
	if err != nil {
		return failure(err), nil
	}
	if profile == nil {
		return mcp.NewToolResultText(fmt.Sprintf("@%s has no posts to analyse.", instagram.SanitizeUsername(username))), nil
	}
	h.record(ctx, profile)

	return h.render(report.Comparison{Self: profile}, format)
}

// HandleCompareProfiles handles the compare_profiles tool
func (h *Handlers) HandleCompareProfiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username, err := req.RequireString("username")
	if err != nil || strings.TrimSpace(username) == "" {
		return mcp.NewToolResultError("username is required"), nil
	}
	competitor, err := req.RequireString("competitor")
	if err != nil || strings.TrimSpace(competitor) == "" {
		return mcp.NewToolResultError("competitor is required"), nil
	}
	format, err := formatArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	limit := req.GetInt("limit", 0)
	mine, theirs, err := h.scanner.Compare(ctx, h.request(username, limit), h.request(competitor, limit))
	if err != nil && mine == nil {
		return failure(err), nil
	}
	if mine == nil {
		return mcp.NewToolResultText(fmt.Sprintf("@%s has no posts to analyse.", instagram.SanitizeUsername(username))), nil
	}
	h.record(ctx, mine)
	h.record(ctx, theirs)

	result, renderErr := h.render(report.Comparison{Self: mine, Competitor: theirs}, format)
	if err != nil && result != nil && !result.IsError {
		// The competitor failed; the report still covers the profile itself.
		result.Content = append(result.Content, mcp.NewTextContent("Competitor skipped: "+guidance(err)))
	}
	return result, renderErr
}

// HandleProfileHistory handles the profile_history tool
func (h *Handlers) HandleProfileHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username, err := req.RequireString("username")
	if err != nil || strings.TrimSpace(username) == "" {
		return mcp.NewToolResultError("username is required"), nil
	}
	if h.history == nil {
		return mcp.NewToolResultError("scan history is disabled"), nil
	}

	limit := req.GetInt("limit", DefaultHistoryLimit)
	if limit < 1 {
		limit = DefaultHistoryLimit
	}

	username = instagram.SanitizeUsername(username)
	snapshots, err := h.history.List(ctx, username, limit)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to read history", err), nil
	}
	if len(snapshots) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No earlier scans of @%s.", username)), nil
	}

	type entry struct {
		stats.ProfileStats
		Change *history.Delta `json:"change,omitempty"`
	}
	entries := make([]entry, len(snapshots))
	for i := range snapshots {
		entries[i] = entry{ProfileStats: snapshots[i]}
		if i+1 < len(snapshots) {
			d := history.Compare(&snapshots[i+1], &snapshots[i])
			entries[i].Change = &d
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to encode history", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *Handlers) request(username string, limit int) scanner.Request {
	if limit < 0 {
		limit = 0
	}
	req := scanner.Request{Username: username, PostLimit: limit}
	if h.sessions != nil {
		if session, err := h.sessions.Session(""); err == nil {
			req.Session = session
		}
	}
	return req
}

func (h *Handlers) record(ctx context.Context, p *stats.ProfileStats) {
	if _, _, err := history.Record(ctx, h.history, p); err != nil {
		h.logger.WithError(err).WithField("username", p.Username).Warn("Failed to record scan history")
	}
}

func (h *Handlers) render(c report.Comparison, format string) (*mcp.CallToolResult, error) {
	r, err := report.Build(c, h.now())
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to build report", err), nil
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, r, format); err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to render report", err), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func formatArg(req mcp.CallToolRequest) (string, error) {
	format := strings.ToLower(req.GetString("format", report.FormatJSON))
	switch format {
	case "":
		return report.FormatJSON, nil
	case report.FormatJSON, report.FormatYAML, report.FormatText:
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q: use json, yaml or text", format)
	}
}

func failure(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(guidance(err))
}

func guidance(err error) string {
	if text := errors.Guidance(err); text != "" {
		return text
	}
	return err.Error()
}
