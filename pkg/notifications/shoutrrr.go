// Package notifications delivers job outcome notifications to Telegram.
// This file implements conversion of the notifier configuration to a shoutrrr URL.
package notifications

import (
	"github.com/nicholas-fedor/shoutrrr/pkg/services/chat/telegram"
	"github.com/sirupsen/logrus"
)

// GetURL generates the shoutrrr Telegram service URL equivalent to the notifier's target.
//
// The retry policy and status gates have no shoutrrr counterpart and are not part of the URL.
// A message thread is appended to the chat as "<chat>:<thread>".
//
// Returns:
//   - string: Shoutrrr service URL.
//   - error: Always nil; present to satisfy types.ConvertibleNotifier.
func (n *TelegramNotifier) GetURL() (string, error) {
	chat := n.config.ChatID
	if n.config.MessageThreadID != "" {
		chat += ":" + n.config.MessageThreadID
	}

	config := &telegram.Config{
		Token:        n.config.BotToken,
		Chats:        []string{chat},
		Preview:      true,
		Notification: !n.config.DisableNotification,
	}

	urlStr := config.GetURL().String()
	logrus.WithField("chats", config.Chats).Debug("Generated Telegram shoutrrr URL")

	return urlStr, nil
}
