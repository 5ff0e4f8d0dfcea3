// Package notifications delivers job outcome notifications to Telegram.
// This file implements the outbound sendMessage request body.
package notifications

import (
	"net/url"
	"strings"

	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

// Form field names of the sendMessage method.
const (
	fieldChatID              = "chat_id"
	fieldText                = "text"
	fieldMessageThreadID     = "message_thread_id"
	fieldDisableNotification = "disable_notification"
)

// OutboundMessage is the rendered text plus the form fields sent with it.
type OutboundMessage struct {
	ChatID              string
	Text                string
	MessageThreadID     string
	DisableNotification bool
}

// NewOutboundMessage renders the message for an outcome using the target fields from config.
func NewOutboundMessage(config Config, outcome types.Outcome) OutboundMessage {
	return OutboundMessage{
		ChatID:              config.ChatID,
		Text:                FormatMessage(outcome),
		MessageThreadID:     config.MessageThreadID,
		DisableNotification: config.DisableNotification,
	}
}

// Encode returns the form-urlencoded body.
//
// Fields keep a fixed order (chat_id, text, message_thread_id, disable_notification), so
// url.Values, which sorts keys, is not used. Optional fields are left out when unset.
func (m OutboundMessage) Encode() string {
	var builder strings.Builder

	writeFormField(&builder, fieldChatID, m.ChatID)
	writeFormField(&builder, fieldText, m.Text)

	if m.MessageThreadID != "" {
		writeFormField(&builder, fieldMessageThreadID, m.MessageThreadID)
	}

	if m.DisableNotification {
		writeFormField(&builder, fieldDisableNotification, "true")
	}

	return builder.String()
}

// writeFormField appends one escaped key=value pair.
func writeFormField(builder *strings.Builder, key, value string) {
	if builder.Len() > 0 {
		builder.WriteByte('&')
	}

	builder.WriteString(url.QueryEscape(key))
	builder.WriteByte('=')
	builder.WriteString(url.QueryEscape(value))
}
