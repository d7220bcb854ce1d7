package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/monosms/sms-agent/internal/dispatcher"
	"github.com/monosms/sms-agent/internal/metrics"
	"github.com/monosms/sms-agent/internal/model"
	"github.com/monosms/sms-agent/internal/parser"
	"github.com/monosms/sms-agent/internal/util"
)

// inboundReq is the Twilio-style webhook payload; extra provider metadata is
// ignored. Accepted as form-encoded (Twilio's default) or JSON.
type inboundReq struct {
	MessageSid string `json:"MessageSid" form:"MessageSid"`
	From       string `json:"From" form:"From"`
	To         string `json:"To" form:"To"`
	Body       string `json:"Body" form:"Body"`
}

const parseFailureReply = "Sorry, could not understand your command."

func inboundSMSHandler(cmdParser *parser.Parser, disp *dispatcher.Dispatcher, notifier dispatcher.Notifier) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req inboundReq
		if err := c.Bind(&req); err != nil {
			return c.String(http.StatusBadRequest, "bad request")
		}

		if !util.ValidE164(req.From) {
			log.Warnf("invalid sender format: %q", req.From)
			metrics.MessagesTotal.WithLabelValues("none", "rejected_sender").Inc()
			return c.String(http.StatusBadRequest, "Invalid sender format")
		}

		msg := model.InboundMessage{
			Sender:    req.From,
			Body:      req.Body,
			MessageID: req.MessageSid,
		}

		parsed, err := cmdParser.Parse(c.Request().Context(), msg.Body, msg.Sender)
		if err != nil {
			// The webhook contract expects acknowledgement, not internal
			// failure codes; the sender hears about it over SMS instead.
			log.Errorf("parse failed for %s: %v", msg.Sender, err)
			metrics.MessagesTotal.WithLabelValues("none", "parse_failed").Inc()
			if serr := notifier.Send(c.Request().Context(), msg.Sender, parseFailureReply); serr != nil {
				log.Errorf("parse-failure reply to %s failed: %v", msg.Sender, serr)
			}
			return ack(c)
		}

		// Once dispatched, a submission runs to completion or failure on its
		// own; webhook disconnects are not propagated into it.
		ctx := context.WithoutCancel(c.Request().Context())

		switch parsed.Action {
		case model.ActionSwap:
			err = disp.DispatchSwap(ctx, msg, parsed)
		case model.ActionSend:
			err = disp.DispatchSend(ctx, msg, parsed)
		default:
			err = disp.DispatchUnknown(ctx, msg)
		}
		if err != nil {
			log.Errorf("dispatch failed for %s: %v", msg.Sender, err)
		}

		return ack(c)
	}
}

// ack is the empty TwiML body the webhook provider expects on receipt.
func ack(c echo.Context) error {
	return c.Blob(http.StatusOK, "text/xml", []byte("<Response></Response>"))
}
