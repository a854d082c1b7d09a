package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/neezs/neezspilot/pkg/api"
	"github.com/neezs/neezspilot/pkg/line"
)

const signatureHeader = "X-Line-Signature"

// Thai apology sent when an event handler panics.
const panicApology = "ขออภัย เกิดข้อผิดพลาดในการประมวลผล กรุณาลองใหม่อีกครั้ง"

func (s *Server) handleWebhook(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(io.LimitReader(req.Body, 1<<20))
	if err != nil {
		api.FailureResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	if !line.VerifySignature(s.config.ChannelSecret, body, req.Header.Get(signatureHeader)) {
		log.Warn("webhook signature verification failed")
		api.FailureResponse(w, http.StatusUnauthorized, "signature validation failed")
		return
	}

	var webhook line.WebhookRequest
	if err := json.Unmarshal(body, &webhook); err != nil {
		log.WithError(err).Error("could not decode webhook body")
		api.FailureResponse(w, http.StatusInternalServerError, "could not decode webhook body")
		return
	}

	for _, ev := range webhook.Events {
		s.handleEvent(req.Context(), ev)
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]string{"status": "OK"})
}

// handleEvent isolates a single event: a panic in one handler is logged and
// answered with an apology instead of taking down the batch.
func (s *Server) handleEvent(ctx context.Context, ev line.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("event handler panicked")
			webhookEventsMetric.WithLabelValues("panicked").Inc()
			if ev.ReplyToken != "" {
				if err := s.replier.Reply(ctx, ev.ReplyToken, []line.Message{line.NewTextMessage(panicApology)}); err != nil {
					log.WithError(err).Error("could not send apology reply")
				}
			}
		}
	}()

	messages := s.dispatcher.Dispatch(ctx, ev)
	if len(messages) == 0 {
		webhookEventsMetric.WithLabelValues("silent").Inc()
		return
	}
	if ev.ReplyToken == "" {
		webhookEventsMetric.WithLabelValues("silent").Inc()
		return
	}

	if err := s.replier.Reply(ctx, ev.ReplyToken, messages); err != nil {
		log.WithError(err).Error("could not deliver reply")
		webhookEventsMetric.WithLabelValues("reply_failed").Inc()
		return
	}
	webhookEventsMetric.WithLabelValues("replied").Inc()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	api.RespondWithJSON(http.StatusOK, w, map[string]string{"status": "OK"})
}
