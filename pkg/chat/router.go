package chat

import (
	"context"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/neezs/neezspilot/pkg/ai"
	"github.com/neezs/neezspilot/pkg/assetcache"
	"github.com/neezs/neezspilot/pkg/line"
	"github.com/neezs/neezspilot/pkg/mcpclient"
	"github.com/neezs/neezspilot/pkg/todo"
)

// LLM is the slice of the language model client the router needs.
type LLM interface {
	Chat(ctx context.Context, instructions, data string) (string, error)
	DescribeImage(ctx context.Context, data []byte, mimeType, hint string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (ai.Image, error)
}

// Searcher reaches the web-search tool server.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]mcpclient.SearchResult, error)
	Status(ctx context.Context) mcpclient.Status
}

// SheetsTools reaches the spreadsheet tool server.
type SheetsTools interface {
	Status(ctx context.Context) mcpclient.Status
	ListTabs(ctx context.Context, spreadsheetID string) ([]mcpclient.Tab, error)
	Preview(ctx context.Context, spreadsheetID, sheetName string) (mcpclient.SheetPreview, error)
	SummaryByMonth(ctx context.Context, spreadsheetID, sheetName string, year, month int) (mcpclient.MonthSummary, error)
	ListSpreadsheets(ctx context.Context, query string, pageSize int) ([]mcpclient.DriveFile, error)
}

// ContentFetcher downloads media payloads for inbound messages.
type ContentFetcher interface {
	GetMessageContent(ctx context.Context, messageID string) ([]byte, string, error)
}

// Config carries the handler-facing settings.
type Config struct {
	// LIFFID builds the /todo liff deep link.
	LIFFID string
	// PublicBaseURL is where generated images are served back from.
	PublicBaseURL string
	// Todo backend details, shown by /todo status.
	SpreadsheetID string
	SheetName     string
	DataFile      string
	// Finance sheet queried by /sheet summary.
	FinanceSpreadsheetID string
	FinanceSheetName     string
}

// Dependencies are injected once at startup; handlers never reach for
// process-wide state.
type Dependencies struct {
	Store       todo.Store
	LLM         LLM
	Search      Searcher
	SheetsTools SheetsTools
	Assets      *assetcache.Cache
	Content     ContentFetcher
	Config      Config
}

type route struct {
	name    string
	re      *regexp.Regexp
	handler func(ctx context.Context, ev line.Event, m []string) []line.Message
}

// Router matches normalized text against an ordered route table; the first
// match wins, everything else falls through to chat completion.
type Router struct {
	deps   Dependencies
	routes []route
}

var dispatchMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "neezspilot_command_dispatches_total",
	Help: "Commands dispatched by route name; chat completions count as \"chat\".",
}, []string{"route"})

// commandVerbs gates group chats: text starting with any of these is treated
// as addressed to the bot even without a mention.
var commandVerbs = regexp.MustCompile(`(?i)^/(mcp|add|list|todo|image|sheet|drive)\b`)

func NewRouter(deps Dependencies) *Router {
	r := &Router{deps: deps}
	r.routes = []route{
		{
			name:    "mcp-status",
			re:      regexp.MustCompile(`(?i)^/mcp\s*$`),
			handler: r.handleMCPStatus,
		},
		{
			name:    "todo-add",
			re:      regexp.MustCompile(`(?i)^/(?:add\s+to\s*do(?:\s+list)?|add\s+todo|todo\s+add)(?:\s+(.*))?$`),
			handler: r.handleTodoAdd,
		},
		{
			name:    "todo-list",
			re:      regexp.MustCompile(`(?i)^/(?:list\s+to\s*do(?:s|\s+list)?|todo\s+list)(?:\s+(\d+))?\s*$`),
			handler: r.handleTodoList,
		},
		{
			name:    "todo-liff",
			re:      regexp.MustCompile(`(?i)^/todo\s+liff\s*$`),
			handler: r.handleTodoLiff,
		},
		{
			name:    "todo-status",
			re:      regexp.MustCompile(`(?i)^/todo\s+status\s*$`),
			handler: r.handleTodoStatus,
		},
		{
			name:    "image",
			re:      regexp.MustCompile(`(?i)^/image(?:\s+(.*))?$`),
			handler: r.handleImage,
		},
		{
			name:    "sheet-status",
			re:      regexp.MustCompile(`(?i)^/sheet\s+status\s*$`),
			handler: r.handleSheetStatus,
		},
		{
			name:    "sheet-summary",
			re:      regexp.MustCompile(`(?i)^/sheet\s+summary\s+(\S+)\s*$`),
			handler: r.handleSheetSummary,
		},
		{
			name:    "sheet-tabs",
			re:      regexp.MustCompile(`(?i)^/sheet\s+tabs\s+(\S+)\s*$`),
			handler: r.handleSheetTabs,
		},
		{
			name:    "sheet-preview",
			re:      regexp.MustCompile(`(?i)^/sheet\s+preview\s+(\S+)\s+(.+?)\s*$`),
			handler: r.handleSheetPreview,
		},
		{
			name:    "drive-list",
			re:      regexp.MustCompile(`(?i)^/drive\s+list(?:\s+(.*))?$`),
			handler: r.handleDriveList,
		},
	}
	return r
}

// Dispatch selects and runs at most one handler for the event and returns
// the reply messages, or nil when the event is to be silently ignored.
func (r *Router) Dispatch(ctx context.Context, ev line.Event) []line.Message {
	if ev.Type != line.EventTypeMessage || ev.Message == nil {
		return nil
	}

	switch ev.Message.Type {
	case line.MessageTypeImage:
		return r.handleInboundImage(ctx, ev)
	case line.MessageTypeText:
	default:
		return nil
	}

	raw := ev.Message.Text
	text := Normalize(raw)
	grouped := ev.Source.GroupID != "" || ev.Source.RoomID != ""
	mentioned := isMention(ev, raw)

	// Noise suppression: in multi-party chats the bot only acts on
	// commands and explicit mentions.
	if grouped && !mentioned && !commandVerbs.MatchString(text) {
		log.WithField("chatKey", todo.ChatKeyOf(sourceOf(ev))).Debug("ignoring unaddressed group message")
		return nil
	}

	for _, rt := range r.routes {
		if m := rt.re.FindStringSubmatch(text); m != nil {
			log.WithFields(log.Fields{"route": rt.name, "chatKey": todo.ChatKeyOf(sourceOf(ev))}).Info("dispatching command")
			dispatchMetric.WithLabelValues(rt.name).Inc()
			return rt.handler(ctx, ev, m)
		}
	}

	// No command matched; default to chat completion, but never for
	// unaddressed group messages.
	if grouped && !mentioned {
		return nil
	}
	dispatchMetric.WithLabelValues("chat").Inc()
	return r.handleChat(ctx, ev, text)
}

func isMention(ev line.Event, raw string) bool {
	if ev.Message != nil && ev.Message.Mention != nil && len(ev.Message.Mention.Mentionees) > 0 {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(raw), "@")
}

func sourceOf(ev line.Event) todo.Source {
	return todo.Source{
		GroupID: ev.Source.GroupID,
		RoomID:  ev.Source.RoomID,
		UserID:  ev.Source.UserID,
	}
}
