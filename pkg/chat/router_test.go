package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neezs/neezspilot/pkg/ai"
	"github.com/neezs/neezspilot/pkg/assetcache"
	"github.com/neezs/neezspilot/pkg/line"
	"github.com/neezs/neezspilot/pkg/mcpclient"
	"github.com/neezs/neezspilot/pkg/todo"
)

type stubStore struct {
	added []todo.NewItem
	items []todo.Item
	err   error
}

func (s *stubStore) Name() string { return "memory" }

func (s *stubStore) Add(_ context.Context, _ todo.Source, item todo.NewItem) (todo.Item, error) {
	if s.err != nil {
		return todo.Item{}, s.err
	}
	s.added = append(s.added, item)
	return todo.Item{ID: "t1", Text: item.Text, Status: todo.StatusOpen}, nil
}

func (s *stubStore) List(_ context.Context, _ todo.Source, opts todo.ListOptions) ([]todo.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	items := s.items
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[len(items)-opts.Limit:]
	}
	return items, nil
}

type stubLLM struct {
	chatCalls  []string
	chatAnswer string
	described  []string
	image      ai.Image
	imageErr   error
}

func (l *stubLLM) Chat(_ context.Context, _, data string) (string, error) {
	l.chatCalls = append(l.chatCalls, data)
	return l.chatAnswer, nil
}

func (l *stubLLM) DescribeImage(_ context.Context, _ []byte, mimeType, _ string) (string, error) {
	l.described = append(l.described, mimeType)
	return "a cat", nil
}

func (l *stubLLM) GenerateImage(_ context.Context, _ string) (ai.Image, error) {
	if l.imageErr != nil {
		return ai.Image{}, l.imageErr
	}
	return l.image, nil
}

type stubSearcher struct {
	results []mcpclient.SearchResult
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, query string, _ int) ([]mcpclient.SearchResult, error) {
	s.queries = append(s.queries, query)
	return s.results, nil
}

func (s *stubSearcher) Status(context.Context) mcpclient.Status {
	return mcpclient.Status{Connected: true, ServerName: "brave-search", ServerVersion: "1.0"}
}

func textEvent(text string, source line.Source) line.Event {
	return line.Event{
		Type:       line.EventTypeMessage,
		ReplyToken: "rt",
		Source:     source,
		Message:    &line.EventMessage{ID: "m1", Type: line.MessageTypeText, Text: text},
	}
}

func directSource() line.Source {
	return line.Source{Type: line.SourceTypeUser, UserID: "U1"}
}

func groupSource() line.Source {
	return line.Source{Type: line.SourceTypeGroup, GroupID: "G1", UserID: "U1"}
}

func TestDispatchTodoAdd(t *testing.T) {
	store := &stubStore{}
	r := NewRouter(Dependencies{Store: store})

	tests := []struct {
		name string
		text string
	}{
		{name: "slash todo add", text: "/todo add buy milk"},
		{name: "add todo alias", text: "/add todo buy milk"},
		{name: "spoken alias", text: "/add to do list buy milk"},
		{name: "case insensitive", text: "/Todo Add buy milk"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store.added = nil
			msgs := r.Dispatch(context.Background(), textEvent(tc.text, directSource()))
			require.Len(t, msgs, 1)
			assert.Contains(t, msgs[0].Text, "buy milk")
			require.Len(t, store.added, 1)
			assert.Equal(t, "buy milk", store.added[0].Text)
			assert.Equal(t, "U1", store.added[0].UserID)
		})
	}
}

func TestDispatchTodoAddEmptyTextShowsUsage(t *testing.T) {
	store := &stubStore{}
	r := NewRouter(Dependencies{Store: store})

	msgs := r.Dispatch(context.Background(), textEvent("/todo add", directSource()))
	require.Len(t, msgs, 1)
	assert.Equal(t, msgTodoAddUsage, msgs[0].Text)
	assert.Empty(t, store.added)
}

func TestDispatchTodoList(t *testing.T) {
	store := &stubStore{items: []todo.Item{
		{ID: "a", Text: "first"},
		{ID: "b", Text: "second"},
	}}
	r := NewRouter(Dependencies{Store: store})

	msgs := r.Dispatch(context.Background(), textEvent("/todo list", directSource()))
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "1. first")
	assert.Contains(t, msgs[0].Text, "2. second")
}

func TestDispatchTodoListEmpty(t *testing.T) {
	r := NewRouter(Dependencies{Store: &stubStore{}})

	msgs := r.Dispatch(context.Background(), textEvent("/todo list", directSource()))
	require.Len(t, msgs, 1)
	assert.Equal(t, msgTodoEmpty, msgs[0].Text)
}

func TestDispatchStoreConfigError(t *testing.T) {
	store := &stubStore{err: &todo.ConfigError{Setting: "spreadsheet-id"}}
	r := NewRouter(Dependencies{Store: store})

	msgs := r.Dispatch(context.Background(), textEvent("/todo add x", directSource()))
	require.Len(t, msgs, 1)
	assert.Equal(t, msgNotConfigured, msgs[0].Text)
}

func TestDispatchListValidationErrorShowsListUsage(t *testing.T) {
	store := &stubStore{err: &todo.ValidationError{Reason: "bad range"}}
	r := NewRouter(Dependencies{Store: store})

	msgs := r.Dispatch(context.Background(), textEvent("/todo list 3", directSource()))
	require.Len(t, msgs, 1)
	assert.Equal(t, msgTodoListUsage, msgs[0].Text)
}

func TestDispatchGroupGating(t *testing.T) {
	store := &stubStore{items: []todo.Item{{ID: "a", Text: "x"}}}
	llm := &stubLLM{chatAnswer: "hi"}
	r := NewRouter(Dependencies{Store: store, LLM: llm})

	t.Run("plain group text is ignored", func(t *testing.T) {
		msgs := r.Dispatch(context.Background(), textEvent("what's up", groupSource()))
		assert.Nil(t, msgs)
		assert.Empty(t, llm.chatCalls)
	})

	t.Run("command works without mention", func(t *testing.T) {
		msgs := r.Dispatch(context.Background(), textEvent("/todo list", groupSource()))
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0].Text, "1. x")
	})

	t.Run("mention reaches chat", func(t *testing.T) {
		ev := textEvent("@Bot what's up", groupSource())
		ev.Message.Mention = &line.Mention{Mentionees: []line.Mentionee{{Index: 0, Length: 4, IsSelf: true}}}
		msgs := r.Dispatch(context.Background(), ev)
		require.Len(t, msgs, 1)
		assert.Equal(t, "hi", msgs[0].Text)
		require.Len(t, llm.chatCalls, 1)
		assert.Contains(t, llm.chatCalls[0], "what's up")
	})

	t.Run("direct chat falls through to chat", func(t *testing.T) {
		llm.chatCalls = nil
		msgs := r.Dispatch(context.Background(), textEvent("hello", directSource()))
		require.Len(t, msgs, 1)
		assert.Equal(t, "hi", msgs[0].Text)
	})
}

func TestDispatchChatUsesSearchContext(t *testing.T) {
	llm := &stubLLM{chatAnswer: "answer"}
	search := &stubSearcher{results: []mcpclient.SearchResult{
		{Title: "Go 1.23", URL: "https://go.dev", Description: "release notes"},
	}}
	r := NewRouter(Dependencies{Store: &stubStore{}, LLM: llm, Search: search})

	msgs := r.Dispatch(context.Background(), textEvent("go news", directSource()))
	require.Len(t, msgs, 1)
	require.Len(t, llm.chatCalls, 1)
	assert.Contains(t, llm.chatCalls[0], "Go 1.23")
	assert.Contains(t, llm.chatCalls[0], "go news")
	assert.Equal(t, []string{"go news"}, search.queries)
}

func TestDispatchRoutePriority(t *testing.T) {
	// "/todo list" must hit the list route, not fall through to chat.
	llm := &stubLLM{chatAnswer: "chatted"}
	r := NewRouter(Dependencies{Store: &stubStore{}, LLM: llm})

	msgs := r.Dispatch(context.Background(), textEvent("/todo list", directSource()))
	require.Len(t, msgs, 1)
	assert.Equal(t, msgTodoEmpty, msgs[0].Text)
	assert.Empty(t, llm.chatCalls)
}

func TestDispatchImage(t *testing.T) {
	llm := &stubLLM{image: ai.Image{Bytes: []byte("png"), MimeType: "image/png"}}
	assets := assetcache.New(0)
	r := NewRouter(Dependencies{
		Store:  &stubStore{},
		LLM:    llm,
		Assets: assets,
		Config: Config{PublicBaseURL: "https://bot.example.com/"},
	})

	msgs := r.Dispatch(context.Background(), textEvent("/image a red fox", directSource()))
	require.Len(t, msgs, 1)
	assert.Equal(t, line.MessageTypeImage, msgs[0].Type)
	assert.True(t, strings.HasPrefix(msgs[0].OriginalContentURL, "https://bot.example.com/api/images/"))
	assert.Equal(t, msgs[0].OriginalContentURL, msgs[0].PreviewImageURL)
	assert.Equal(t, 1, assets.Len())
}

func TestDispatchImageMissingPrompt(t *testing.T) {
	r := NewRouter(Dependencies{Store: &stubStore{}})

	msgs := r.Dispatch(context.Background(), textEvent("/image", directSource()))
	require.Len(t, msgs, 1)
	assert.Equal(t, msgImageUsage, msgs[0].Text)
}

func TestDispatchTodoLiff(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		r := NewRouter(Dependencies{Store: &stubStore{}, Config: Config{LIFFID: "liff-123"}})
		msgs := r.Dispatch(context.Background(), textEvent("/todo liff", directSource()))
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0].Text, "https://liff.line.me/liff-123")
	})
	t.Run("unconfigured", func(t *testing.T) {
		r := NewRouter(Dependencies{Store: &stubStore{}})
		msgs := r.Dispatch(context.Background(), textEvent("/todo liff", directSource()))
		require.Len(t, msgs, 1)
		assert.Equal(t, msgLiffNotConfigured, msgs[0].Text)
	})
}

type stubContent struct {
	data     []byte
	mimeType string
}

func (c *stubContent) GetMessageContent(context.Context, string) ([]byte, string, error) {
	return c.data, c.mimeType, nil
}

func TestDispatchInboundImage(t *testing.T) {
	llm := &stubLLM{}
	content := &stubContent{data: []byte("jpeg"), mimeType: "image/jpeg"}
	r := NewRouter(Dependencies{Store: &stubStore{}, LLM: llm, Content: content})

	imageEvent := func(source line.Source) line.Event {
		return line.Event{
			Type:       line.EventTypeMessage,
			ReplyToken: "rt",
			Source:     source,
			Message:    &line.EventMessage{ID: "m2", Type: line.MessageTypeImage},
		}
	}

	t.Run("described in direct chat", func(t *testing.T) {
		msgs := r.Dispatch(context.Background(), imageEvent(directSource()))
		require.Len(t, msgs, 1)
		assert.Equal(t, "a cat", msgs[0].Text)
		assert.Equal(t, []string{"image/jpeg"}, llm.described)
	})

	t.Run("ignored in group chat", func(t *testing.T) {
		llm.described = nil
		msgs := r.Dispatch(context.Background(), imageEvent(groupSource()))
		assert.Nil(t, msgs)
		assert.Empty(t, llm.described)
	})
}

func TestDispatchIgnoresNonMessageEvents(t *testing.T) {
	r := NewRouter(Dependencies{Store: &stubStore{}})

	assert.Nil(t, r.Dispatch(context.Background(), line.Event{Type: "follow"}))
	assert.Nil(t, r.Dispatch(context.Background(), line.Event{Type: line.EventTypeMessage}))
}

func TestParseMonthYear(t *testing.T) {
	tests := []struct {
		in      string
		year    int
		month   int
		wantErr bool
	}{
		{in: "8-2026", year: 2026, month: 8},
		{in: "08-2026", year: 2026, month: 8},
		{in: "2026-08", year: 2026, month: 8},
		{in: "12/2025", year: 2025, month: 12},
		{in: "13-2026", wantErr: true},
		{in: "2026", wantErr: true},
		{in: "a-b", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			year, month, err := parseMonthYear(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.year, year)
			assert.Equal(t, tc.month, month)
		})
	}
}
