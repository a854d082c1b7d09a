package line

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	defaultAPIBase     = "https://api.line.me"
	defaultDataAPIBase = "https://api-data.line.me"
)

// Client talks to the LINE Messaging API with a channel access token.
type Client struct {
	channelToken string
	baseURL      string
	dataBaseURL  string
	httpClient   *http.Client
}

func NewClient(channelToken string) *Client {
	return &Client{
		channelToken: channelToken,
		baseURL:      defaultAPIBase,
		dataBaseURL:  defaultDataAPIBase,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

type replyRequest struct {
	ReplyToken string    `json:"replyToken"`
	Messages   []Message `json:"messages"`
}

// Reply sends up to five messages in answer to the event holding replyToken.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}
	payload, err := json.Marshal(replyRequest{ReplyToken: replyToken, Messages: messages})
	if err != nil {
		return errors.Wrap(err, "marshaling reply")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/bot/message/reply", bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "building reply request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "sending reply")
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		log.WithFields(log.Fields{
			"status": res.StatusCode,
			"body":   string(body),
		}).Error("LINE reply rejected")
		return errors.Errorf("LINE reply failed with status %d", res.StatusCode)
	}
	return nil
}

// GetMessageContent downloads the binary payload of a media message, e.g.
// the picture behind an image event. Returns the bytes and content type.
func (c *Client) GetMessageContent(ctx context.Context, messageID string) ([]byte, string, error) {
	url := c.dataBaseURL + "/v2/bot/message/" + messageID + "/content"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "building content request")
	}
	req.Header.Set("Authorization", "Bearer "+c.channelToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", errors.Wrap(err, "fetching message content")
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return nil, "", errors.Errorf("content fetch failed with status %d", res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "reading message content")
	}
	return body, res.Header.Get("Content-Type"), nil
}
