package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/neezs/neezspilot/pkg/ai"
	"github.com/neezs/neezspilot/pkg/line"
	"github.com/neezs/neezspilot/pkg/mcpclient"
	"github.com/neezs/neezspilot/pkg/todo"
)

const defaultListLimit = 10

func textReply(text string) []line.Message {
	return []line.Message{line.NewTextMessage(text)}
}

// storeErrorReply maps store failures onto user-facing texts.
func storeErrorReply(err error, usage string) []line.Message {
	var cerr *todo.ConfigError
	var verr *todo.ValidationError
	var nferr *todo.NotFoundError
	switch {
	case errors.As(err, &cerr):
		return textReply(msgNotConfigured)
	case errors.As(err, &verr):
		return textReply(usage)
	case errors.As(err, &nferr):
		return textReply(msgItemNotFound)
	default:
		log.WithError(err).Error("todo store operation failed")
		return textReply(msgGenericError)
	}
}

func (r *Router) handleMCPStatus(ctx context.Context, _ line.Event, _ []string) []line.Message {
	var b strings.Builder
	b.WriteString("สถานะ MCP\n")
	writeStatus := func(label string, status mcpclient.Status) {
		if !status.Connected {
			fmt.Fprintf(&b, "%s: ไม่ได้เชื่อมต่อ\n", label)
			return
		}
		fmt.Fprintf(&b, "%s: เชื่อมต่อแล้ว (%s %s)\n", label, status.ServerName, status.ServerVersion)
		for _, tool := range status.Tools {
			fmt.Fprintf(&b, "  - %s\n", tool.Name)
		}
	}
	if r.deps.Search != nil {
		writeStatus("Search", r.deps.Search.Status(ctx))
	} else {
		b.WriteString("Search: ไม่ได้ตั้งค่า\n")
	}
	if r.deps.SheetsTools != nil {
		writeStatus("Sheets", r.deps.SheetsTools.Status(ctx))
	} else {
		b.WriteString("Sheets: ไม่ได้ตั้งค่า\n")
	}
	return textReply(strings.TrimRight(b.String(), "\n"))
}

func (r *Router) handleTodoAdd(ctx context.Context, ev line.Event, m []string) []line.Message {
	text := ""
	if len(m) > 1 {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		return textReply(msgTodoAddUsage)
	}

	item, err := r.deps.Store.Add(ctx, sourceOf(ev), todo.NewItem{Text: text, UserID: ev.Source.UserID})
	if err != nil {
		return storeErrorReply(err, msgTodoAddUsage)
	}
	return textReply(msgTodoAdded + item.Text)
}

func (r *Router) handleTodoList(ctx context.Context, ev line.Event, m []string) []line.Message {
	limit := defaultListLimit
	if len(m) > 1 && m[1] != "" {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			limit = n
		}
	}

	items, err := r.deps.Store.List(ctx, sourceOf(ev), todo.ListOptions{Limit: limit})
	if err != nil {
		return storeErrorReply(err, msgTodoListUsage)
	}
	if len(items) == 0 {
		return textReply(msgTodoEmpty)
	}

	var b strings.Builder
	b.WriteString(msgTodoListHeader)
	for i, item := range items {
		fmt.Fprintf(&b, "\n%d. %s", i+1, item.Text)
	}
	return textReply(b.String())
}

func (r *Router) handleTodoLiff(_ context.Context, _ line.Event, _ []string) []line.Message {
	if r.deps.Config.LIFFID == "" {
		return textReply(msgLiffNotConfigured)
	}
	return textReply("จัดการรายการได้ที่ https://liff.line.me/" + r.deps.Config.LIFFID)
}

// truncateID shortens a spreadsheet id for display.
func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "…"
}

func (r *Router) handleTodoStatus(_ context.Context, _ line.Event, _ []string) []line.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "ที่เก็บรายการ: %s", r.deps.Store.Name())
	switch r.deps.Store.Name() {
	case "memory":
		if r.deps.Config.DataFile != "" {
			fmt.Fprintf(&b, "\nไฟล์ข้อมูล: %s", r.deps.Config.DataFile)
		}
	default:
		if r.deps.Config.SpreadsheetID != "" {
			fmt.Fprintf(&b, "\nสเปรดชีต: %s", truncateID(r.deps.Config.SpreadsheetID))
		}
		if r.deps.Config.SheetName != "" {
			fmt.Fprintf(&b, "\nชีต: %s", r.deps.Config.SheetName)
		}
	}
	return textReply(b.String())
}

func (r *Router) handleImage(ctx context.Context, _ line.Event, m []string) []line.Message {
	prompt := ""
	if len(m) > 1 {
		prompt = strings.TrimSpace(m[1])
	}
	if prompt == "" {
		return textReply(msgImageUsage)
	}
	if r.deps.LLM == nil || r.deps.Assets == nil || r.deps.Config.PublicBaseURL == "" {
		return textReply(msgNotConfigured)
	}

	img, err := r.deps.LLM.GenerateImage(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("image generation failed")
		return textReply(msgGenericError)
	}
	id := r.deps.Assets.Put(img.Bytes, img.MimeType)
	url := strings.TrimRight(r.deps.Config.PublicBaseURL, "/") + "/api/images/" + id
	return []line.Message{line.NewImageMessage(url, url)}
}

func (r *Router) handleSheetStatus(ctx context.Context, _ line.Event, _ []string) []line.Message {
	if r.deps.SheetsTools == nil {
		return textReply(msgNotConfigured)
	}
	status := r.deps.SheetsTools.Status(ctx)
	if !status.Connected {
		return textReply("Sheets MCP: ไม่ได้เชื่อมต่อ")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Sheets MCP: เชื่อมต่อแล้ว (%s %s)", status.ServerName, status.ServerVersion)
	for _, tool := range status.Tools {
		fmt.Fprintf(&b, "\n- %s", tool.Name)
	}
	return textReply(b.String())
}

// parseMonthYear accepts "8-2026", "08-2026" and "2026-08".
func parseMonthYear(s string) (year, month int, err error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' })
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("malformed month-year %q", s)
	}
	a, errA := strconv.Atoi(parts[0])
	b, errB := strconv.Atoi(parts[1])
	if errA != nil || errB != nil {
		return 0, 0, errors.Errorf("malformed month-year %q", s)
	}
	if a >= 1 && a <= 12 {
		month, year = a, b
	} else {
		year, month = a, b
	}
	if month < 1 || month > 12 || year < 2000 || year > 3000 {
		return 0, 0, errors.Errorf("month-year out of range %q", s)
	}
	return year, month, nil
}

func (r *Router) handleSheetSummary(ctx context.Context, _ line.Event, m []string) []line.Message {
	if r.deps.SheetsTools == nil {
		return textReply(msgNotConfigured)
	}
	cfg := r.deps.Config
	if cfg.FinanceSpreadsheetID == "" || cfg.FinanceSheetName == "" {
		return textReply(msgNotConfigured)
	}
	year, month, err := parseMonthYear(m[1])
	if err != nil {
		return textReply(msgSummaryUsage)
	}

	summary, err := r.deps.SheetsTools.SummaryByMonth(ctx, cfg.FinanceSpreadsheetID, cfg.FinanceSheetName, year, month)
	if err != nil {
		log.WithError(err).Error("sheet summary failed")
		return textReply(msgGenericError)
	}
	text := fmt.Sprintf("สรุปเดือน %d/%d\nรายรับ: %.2f\nรายจ่าย: %.2f\nคงเหลือ: %.2f",
		summary.Month, summary.Year, summary.Income, summary.Expense, summary.Net)
	return textReply(text)
}

func (r *Router) handleSheetTabs(ctx context.Context, _ line.Event, m []string) []line.Message {
	if r.deps.SheetsTools == nil {
		return textReply(msgNotConfigured)
	}
	tabs, err := r.deps.SheetsTools.ListTabs(ctx, m[1])
	if err != nil {
		log.WithError(err).Error("listing sheet tabs failed")
		return textReply(msgGenericError)
	}
	if len(tabs) == 0 {
		return textReply(msgNoResults)
	}
	var b strings.Builder
	b.WriteString("แท็บในสเปรดชีต:")
	for _, tab := range tabs {
		fmt.Fprintf(&b, "\n- %s", tab.Title)
	}
	return textReply(b.String())
}

func (r *Router) handleSheetPreview(ctx context.Context, _ line.Event, m []string) []line.Message {
	if r.deps.SheetsTools == nil {
		return textReply(msgNotConfigured)
	}
	preview, err := r.deps.SheetsTools.Preview(ctx, m[1], m[2])
	if err != nil {
		log.WithError(err).Error("sheet preview failed")
		return textReply(msgGenericError)
	}
	if len(preview.Headers) == 0 && len(preview.Rows) == 0 {
		return textReply(msgNoResults)
	}
	var b strings.Builder
	b.WriteString(strings.Join(preview.Headers, " | "))
	for _, row := range preview.Rows {
		b.WriteString("\n" + strings.Join(row, " | "))
	}
	return textReply(b.String())
}

func (r *Router) handleDriveList(ctx context.Context, _ line.Event, m []string) []line.Message {
	if r.deps.SheetsTools == nil {
		return textReply(msgNotConfigured)
	}
	keyword := ""
	if len(m) > 1 {
		keyword = strings.TrimSpace(m[1])
	}
	query := ""
	if keyword != "" {
		query = fmt.Sprintf("name contains '%s'", strings.ReplaceAll(keyword, "'", `\'`))
	}
	files, err := r.deps.SheetsTools.ListSpreadsheets(ctx, query, 10)
	if err != nil {
		log.WithError(err).Error("drive list failed")
		return textReply(msgGenericError)
	}
	if len(files) == 0 {
		return textReply(msgNoResults)
	}
	var b strings.Builder
	b.WriteString("สเปรดชีตใน Drive:")
	for _, f := range files {
		fmt.Fprintf(&b, "\n- %s (%s)", f.Name, truncateID(f.ID))
	}
	return textReply(b.String())
}

// handleChat is the default capability: chat completion, optionally
// grounded with fresh web results. Search failures degrade to a plain
// completion instead of failing the request.
func (r *Router) handleChat(ctx context.Context, _ line.Event, text string) []line.Message {
	if text == "" {
		return nil
	}
	if r.deps.LLM == nil {
		return textReply(msgChatUnavailable)
	}

	prompt := text
	if r.deps.Search != nil {
		if results, err := r.deps.Search.Search(ctx, text, 3); err != nil {
			log.WithError(err).Warn("web search unavailable, answering without context")
		} else if len(results) > 0 {
			var b strings.Builder
			b.WriteString("ข้อมูลจากการค้นเว็บล่าสุด:\n")
			for i, res := range results {
				fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, res.Title, res.Description, res.URL)
			}
			fmt.Fprintf(&b, "คำถาม: %s", text)
			prompt = b.String()
		}
	}

	answer, err := r.deps.LLM.Chat(ctx, instructionsForToday(), prompt)
	if err != nil {
		log.WithError(err).Error("chat completion failed")
		return textReply(msgGenericError)
	}
	return textReply(answer)
}

func instructionsForToday() string {
	return fmt.Sprintf("%s\nวันนี้คือ %s", ai.ChatInstructions, time.Now().Format("2006-01-02"))
}

// handleInboundImage describes a picture the user sent. Only in direct
// chats; groups would be too noisy.
func (r *Router) handleInboundImage(ctx context.Context, ev line.Event) []line.Message {
	if ev.Source.GroupID != "" || ev.Source.RoomID != "" {
		return nil
	}
	if r.deps.LLM == nil || r.deps.Content == nil {
		return nil
	}

	data, mimeType, err := r.deps.Content.GetMessageContent(ctx, ev.Message.ID)
	if err != nil {
		log.WithError(err).Error("fetching image content failed")
		return textReply(msgGenericError)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	description, err := r.deps.LLM.DescribeImage(ctx, data, mimeType, "")
	if err != nil {
		log.WithError(err).Error("image description failed")
		return textReply(msgGenericError)
	}
	return textReply(description)
}
