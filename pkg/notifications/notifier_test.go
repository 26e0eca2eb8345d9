package notifications_test

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/tagreload/internal/flags"
	"github.com/nicholas-fedor/tagreload/pkg/notifications"
)

func newNotificationCommand(args ...string) *cobra.Command {
	cmd := new(cobra.Command)

	flags.SetDefaults()
	flags.RegisterNotificationFlags(cmd)
	gomega.Expect(cmd.ParseFlags(args)).To(gomega.Succeed())

	return cmd
}

var _ = ginkgo.Describe("notifications", func() {
	ginkgo.Describe("NewNotifier", func() {
		ginkgo.It("should return nil without notification URLs", func() {
			notifier, err := notifications.NewNotifier(newNotificationCommand())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(notifier).To(gomega.BeNil())
		})

		ginkgo.It("should create a notifier for valid URLs", func() {
			cmd := newNotificationCommand("--notification-url", "logger://", "--notifications-hostname", "box")

			notifier, err := notifications.NewNotifier(cmd)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(notifier).NotTo(gomega.BeNil())
			gomega.Expect(notifier.GetNames()).To(gomega.Equal([]string{"logger"}))

			notifier.Close()
		})

		ginkgo.It("should reject unknown services", func() {
			cmd := newNotificationCommand("--notification-url", "nosuchservice://x")

			notifier, err := notifications.NewNotifier(cmd)
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(notifier).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("GetTitle", func() {
		ginkgo.It("should include hostname and tag", func() {
			gomega.Expect(notifications.GetTitle("box", "prod")).To(gomega.Equal("[prod] tagreload on box"))
		})

		ginkgo.It("should omit empty parts", func() {
			gomega.Expect(notifications.GetTitle("", "")).To(gomega.Equal("tagreload"))
			gomega.Expect(notifications.GetTitle("box", "")).To(gomega.Equal("tagreload on box"))
		})
	})

	ginkgo.Describe("GetTemplateData", func() {
		ginkgo.It("should use the configured hostname and tag", func() {
			cmd := newNotificationCommand("--notifications-hostname", "box", "--notification-title-tag", "prod")

			data := notifications.GetTemplateData(cmd)
			gomega.Expect(data.Host).To(gomega.Equal("box"))
			gomega.Expect(data.Title).To(gomega.Equal("[prod] tagreload on box"))
		})

		ginkgo.It("should leave the title empty when skipped", func() {
			cmd := newNotificationCommand("--notifications-hostname", "box", "--notification-skip-title")

			data := notifications.GetTemplateData(cmd)
			gomega.Expect(data.Host).To(gomega.Equal("box"))
			gomega.Expect(data.Title).To(gomega.BeEmpty())
		})
	})
})
