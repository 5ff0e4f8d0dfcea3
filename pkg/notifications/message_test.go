package notifications_test

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/backupnotify/pkg/notifications"
	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

var _ = ginkgo.Describe("OutboundMessage", func() {
	var (
		config  notifications.Config
		outcome types.Outcome
	)

	ginkgo.BeforeEach(func() {
		config = notifications.DefaultConfig()
		config.BotToken = "bot_api_token"
		config.ChatID = "chatpublicname"
		outcome = types.Outcome{Status: types.StatusSuccess, Trigger: "test_trigger", Label: "test label"}
	})

	ginkgo.When("no optional fields are set", func() {
		ginkgo.It("encodes chat_id and text only", func() {
			body := notifications.NewOutboundMessage(config, outcome).Encode()
			gomega.Expect(body).To(gomega.Equal(
				"chat_id=chatpublicname&text=%5BBackup%3A%3ASuccess%5D+test+label+%28test_trigger%29",
			))
		})
	})

	ginkgo.When("thread id and silent delivery are set", func() {
		ginkgo.It("appends them after text in order", func() {
			config.MessageThreadID = "12345"
			config.DisableNotification = true

			body := notifications.NewOutboundMessage(config, outcome).Encode()
			gomega.Expect(body).To(gomega.Equal(
				"chat_id=chatpublicname&text=%5BBackup%3A%3ASuccess%5D+test+label+%28test_trigger%29" +
					"&message_thread_id=12345&disable_notification=true",
			))
		})
	})

	ginkgo.When("only silent delivery is set", func() {
		ginkgo.It("omits the thread id", func() {
			config.DisableNotification = true

			body := notifications.NewOutboundMessage(config, outcome).Encode()
			gomega.Expect(body).To(gomega.HaveSuffix("%29&disable_notification=true"))
			gomega.Expect(body).NotTo(gomega.ContainSubstring("message_thread_id"))
		})
	})

	ginkgo.When("silent delivery is disabled", func() {
		ginkgo.It("never sends disable_notification=false", func() {
			config.DisableNotification = false

			body := notifications.NewOutboundMessage(config, outcome).Encode()
			gomega.Expect(body).NotTo(gomega.ContainSubstring("disable_notification"))
		})
	})

	ginkgo.It("escapes reserved characters in every value", func() {
		config.ChatID = "@my channel"
		outcome.Label = "a&b=c"

		body := notifications.NewOutboundMessage(config, outcome).Encode()
		gomega.Expect(body).To(gomega.HavePrefix("chat_id=%40my+channel&text="))
		gomega.Expect(body).To(gomega.ContainSubstring("a%26b%3Dc"))
	})
})
