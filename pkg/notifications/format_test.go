package notifications_test

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/backupnotify/pkg/notifications"
	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

var _ = ginkgo.Describe("FormatMessage", func() {
	ginkgo.DescribeTable("renders the status line",
		func(status types.Status, expected string) {
			outcome := types.Outcome{Status: status, Trigger: "test_trigger", Label: "test label"}
			gomega.Expect(notifications.FormatMessage(outcome)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("success", types.StatusSuccess, "[Backup::Success] test label (test_trigger)"),
		ginkgo.Entry("warning", types.StatusWarning, "[Backup::Warning] test label (test_trigger)"),
		ginkgo.Entry("failure", types.StatusFailure, "[Backup::Failure] test label (test_trigger)"),
	)

	ginkgo.It("does not escape or trim the label and trigger", func() {
		outcome := types.Outcome{Status: types.StatusFailure, Trigger: "a&b", Label: " <x> "}
		gomega.Expect(notifications.FormatMessage(outcome)).To(gomega.Equal("[Backup::Failure]  <x>  (a&b)"))
	})
})
