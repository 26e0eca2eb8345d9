package notifications

import (
	"errors"
	"sync"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/nicholas-fedor/tagreload/pkg/types"
)

var errBlackHole = errors.New("black hole")

// recordingRouter stores every message it is asked to send.
type recordingRouter struct {
	mu       sync.Mutex
	messages []string
	titles   []string
	errs     []error
}

func (r *recordingRouter) Send(message string, params *shoutrrrTypes.Params) []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, message)

	title, _ := params.Title()
	r.titles = append(r.titles, title)

	return r.errs
}

func (r *recordingRouter) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.messages...)
}

// stalledRouter holds every Send until release is closed.
type stalledRouter struct {
	recordingRouter

	entered chan struct{}
	release chan struct{}
}

func (r *stalledRouter) Send(message string, params *shoutrrrTypes.Params) []error {
	select {
	case r.entered <- struct{}{}:
	default:
	}

	<-r.release

	return r.recordingRouter.Send(message, params)
}

func reloadedReport() types.ReloadReport {
	return types.ReloadReport{
		ContainerID:   "0123456789abcdef0123",
		ContainerName: "web",
		Image:         "myapp:latest",
		NewID:         "fedcba9876543210fedc",
		Removed:       true,
	}
}

func newTestNotifier(tplString string, sender router) *shoutrrrTypeNotifier {
	tpl, err := getShoutrrrTemplate(tplString)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	params := &shoutrrrTypes.Params{}
	params.SetTitle("tagreload on host")

	return newShoutrrrNotifier(
		[]string{"discord://token@channel", "slack://hook"},
		sender,
		tpl,
		StaticData{Title: "tagreload on host", Host: "host"},
		params,
	)
}

var _ = ginkgo.Describe("the shoutrrr notifier", func() {
	ginkgo.Describe("the default template", func() {
		ginkgo.It("should describe a successful reload", func() {
			notifier := newTestNotifier("", &recordingRouter{})
			defer notifier.Close()

			msg, err := notifier.buildMessage(reloadedReport())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(msg).To(gomega.Equal("Reloaded web (0123456789ab) from myapp:latest as fedcba987654"))
		})

		ginkgo.It("should describe a failure after removal", func() {
			notifier := newTestNotifier("", &recordingRouter{})
			defer notifier.Close()

			report := reloadedReport()
			report.NewID = ""
			report.Err = errBlackHole

			msg, err := notifier.buildMessage(report)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(msg).To(gomega.Equal(
				"Failed to reload web (0123456789ab) from myapp:latest: black hole." +
					" The old container was removed and no replacement is running."))
		})

		ginkgo.It("should not mention removal when the old container is still there", func() {
			notifier := newTestNotifier("", &recordingRouter{})
			defer notifier.Close()

			report := reloadedReport()
			report.Removed = false
			report.NewID = ""
			report.Err = errBlackHole

			msg, err := notifier.buildMessage(report)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(msg).NotTo(gomega.ContainSubstring("removed"))
		})
	})

	ginkgo.Describe("custom templates", func() {
		ginkgo.It("should render static data and template functions", func() {
			notifier := newTestNotifier(`{{.Title}}: {{ToUpper .Report.ContainerName}}`, &recordingRouter{})
			defer notifier.Close()

			msg, err := notifier.buildMessage(reloadedReport())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(msg).To(gomega.Equal("tagreload on host: WEB"))
		})

		ginkgo.It("should fall back to the default template when parsing fails", func() {
			tpl, err := getShoutrrrTemplate(`{{ .Report.ContainerName `)
			gomega.Expect(err).To(gomega.MatchError(errParseTemplateFailed))
			gomega.Expect(tpl).NotTo(gomega.BeNil())
		})
	})

	ginkgo.Describe("sending", func() {
		ginkgo.It("should deliver queued messages before Close returns", func() {
			sender := &recordingRouter{}
			notifier := newTestNotifier("", sender)

			notifier.SendReload(reloadedReport())

			second := reloadedReport()
			second.ContainerName = "api"
			notifier.SendReload(second)

			notifier.Close()

			gomega.Expect(sender.sent()).To(gomega.HaveLen(2))
			gomega.Expect(sender.sent()[1]).To(gomega.HavePrefix("Reloaded api"))
			gomega.Expect(sender.titles).To(gomega.ConsistOf("tagreload on host", "tagreload on host"))
		})

		ginkgo.It("should skip empty messages", func() {
			sender := &recordingRouter{}
			notifier := newTestNotifier(`{{if .Report.Failed}}failed{{end}}`, sender)

			notifier.SendReload(reloadedReport())
			notifier.Close()

			gomega.Expect(sender.sent()).To(gomega.BeEmpty())
		})

		ginkgo.It("should keep going when a service fails", func() {
			sender := &recordingRouter{errs: []error{nil, errBlackHole}}
			notifier := newTestNotifier("", sender)

			notifier.SendReload(reloadedReport())
			notifier.SendReload(reloadedReport())
			notifier.Close()

			gomega.Expect(sender.sent()).To(gomega.HaveLen(2))
		})

		ginkgo.It("should drop messages instead of blocking when the queue is full", func() {
			sender := &stalledRouter{entered: make(chan struct{}, 1), release: make(chan struct{})}
			notifier := newTestNotifier("", sender)

			notifier.SendReload(reloadedReport())
			gomega.Eventually(sender.entered).Should(gomega.Receive())

			queued := make(chan struct{})
			go func() {
				defer close(queued)

				for range messageQueueSize + 5 {
					notifier.SendReload(reloadedReport())
				}
			}()
			gomega.Eventually(queued).Should(gomega.BeClosed())

			close(sender.release)
			notifier.Close()

			gomega.Expect(sender.sent()).To(gomega.HaveLen(messageQueueSize + 1))
		})
	})

	ginkgo.Describe("service names", func() {
		ginkgo.It("should use the URL schemes", func() {
			notifier := newTestNotifier("", &recordingRouter{})
			defer notifier.Close()

			gomega.Expect(notifier.GetNames()).To(gomega.Equal([]string{"discord", "slack"}))
		})

		ginkgo.It("should flag URLs without a scheme", func() {
			gomega.Expect(GetScheme("no-scheme-here")).To(gomega.Equal("invalid"))
			gomega.Expect(GetScheme(":missing")).To(gomega.Equal("invalid"))
		})
	})
})
