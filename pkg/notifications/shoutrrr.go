package notifications

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"
	"text/template"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/sirupsen/logrus"

	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/nicholas-fedor/tagreload/pkg/notifications/templates"
	"github.com/nicholas-fedor/tagreload/pkg/types"
)

// LocalLog is a logrus logger for the notification goroutine itself.
var LocalLog = logrus.WithField("notify", "no")

// messageQueueSize bounds the number of messages waiting to be sent.
const messageQueueSize = 10

// router defines the interface for sending Shoutrrr notifications.
// It abstracts the underlying service implementation.
type router interface {
	Send(message string, params *shoutrrrTypes.Params) []error
}

// shoutrrrTypeNotifier implements types.Notifier on top of a Shoutrrr router.
// Messages are queued and sent from a single goroutine.
type shoutrrrTypeNotifier struct {
	Urls     []string
	Router   router
	template *template.Template
	messages chan string
	done     chan bool
	params   *shoutrrrTypes.Params
	data     StaticData
}

// GetScheme extracts the scheme part of a Shoutrrr URL.
// It returns "invalid" if no scheme is found.
func GetScheme(url string) string {
	schemeEnd := strings.Index(url, ":")
	if schemeEnd <= 0 {
		return "invalid"
	}

	return url[:schemeEnd]
}

// GetNames returns a list of notification service names derived from URLs.
func (n *shoutrrrTypeNotifier) GetNames() []string {
	names := make([]string, len(n.Urls))
	for i, u := range n.Urls {
		names[i] = GetScheme(u)
	}

	return names
}

// getShoutrrrTemplate parses a custom template or returns the default one.
func getShoutrrrTemplate(tplString string) (*template.Template, error) {
	tplBase := template.New("").Funcs(templates.Funcs)

	if tplString == "" {
		return template.Must(tplBase.Parse(commonTemplates["default"])), nil
	}

	if builtin, found := commonTemplates[tplString]; found {
		return template.Must(tplBase.Parse(builtin)), nil
	}

	tpl, err := tplBase.Parse(tplString)
	if err != nil {
		return template.Must(template.New("").Funcs(templates.Funcs).Parse(commonTemplates["default"])),
			fmt.Errorf("%w: %w", errParseTemplateFailed, err)
	}

	return tpl, nil
}

// createNotifier initializes a Shoutrrr notifier and starts its sending goroutine.
//
// An unparsable template falls back to the default template. Shoutrrr's own logging
// goes to stdout when stdout is set and to logrus at trace level otherwise.
func createNotifier(urls []string, tplString string, data StaticData, stdout bool) (*shoutrrrTypeNotifier, error) {
	tpl, err := getShoutrrrTemplate(tplString)
	if err != nil {
		logrus.WithError(err).Error("Could not use configured notification template, using default template")
	}

	var logger shoutrrrTypes.StdLogger
	if stdout {
		logger = log.New(os.Stdout, ``, 0)
	} else {
		logger = log.New(logrus.StandardLogger().WriterLevel(logrus.TraceLevel), "Shoutrrr: ", 0)
	}

	sender, err := shoutrrr.NewSender(logger, urls...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCreateSenderFailed, err)
	}

	params := &shoutrrrTypes.Params{}
	if data.Title != "" {
		params.SetTitle(data.Title)
	}

	notifier := newShoutrrrNotifier(urls, sender, tpl, data, params)

	return notifier, nil
}

// newShoutrrrNotifier assembles a notifier around a router and starts sending.
func newShoutrrrNotifier(
	urls []string,
	sender router,
	tpl *template.Template,
	data StaticData,
	params *shoutrrrTypes.Params,
) *shoutrrrTypeNotifier {
	notifier := &shoutrrrTypeNotifier{
		Urls:     urls,
		Router:   sender,
		template: tpl,
		messages: make(chan string, messageQueueSize),
		done:     make(chan bool),
		params:   params,
		data:     data,
	}

	go sendNotifications(notifier)

	return notifier
}

// sendNotifications processes queued messages and sends them via the router.
func sendNotifications(notifier *shoutrrrTypeNotifier) {
	for msg := range notifier.messages {
		errs := notifier.Router.Send(msg, notifier.params)

		for i, err := range errs {
			if err != nil {
				scheme := "unknown"
				if i < len(notifier.Urls) {
					scheme = GetScheme(notifier.Urls[i])
				}

				LocalLog.WithFields(logrus.Fields{
					"service": scheme,
					"index":   i,
				}).WithError(err).Error("Failed to send shoutrrr notification")
			}
		}
	}

	notifier.done <- true
}

// buildMessage renders the notification text for one report.
func (n *shoutrrrTypeNotifier) buildMessage(report types.ReloadReport) (string, error) {
	var body bytes.Buffer

	if err := n.template.Execute(&body, Data{StaticData: n.data, Report: report}); err != nil {
		return "", fmt.Errorf("%w: %w", errExecuteTemplateFailed, err)
	}

	return strings.TrimSpace(body.String()), nil
}

// SendReload queues a message describing the outcome of a reload.
// Empty messages are skipped, and the message is dropped when the queue is full.
func (n *shoutrrrTypeNotifier) SendReload(report types.ReloadReport) {
	msg, err := n.buildMessage(report)
	if err != nil {
		LocalLog.WithError(err).Error("Notification template error")

		return
	}

	if msg == "" {
		LocalLog.Debug("Skipping notification due to empty message")

		return
	}

	select {
	case n.messages <- msg:
	default:
		LocalLog.WithField("container", report.ContainerName).
			Warn("Notification queue is full, dropping message")
	}
}

// Close prevents further messages from being queued and waits until all queued messages are sent.
func (n *shoutrrrTypeNotifier) Close() {
	close(n.messages)

	LocalLog.Debug("Waiting for the notification goroutine to finish")

	<-n.done
}
