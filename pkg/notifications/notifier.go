package notifications

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/tagreload/pkg/types"
)

// NewNotifier creates a Notifier from the notification flags.
//
// Returns:
//   - types.Notifier: Shoutrrr-backed notifier, or nil when no notification URL is configured.
//   - error: Non-nil if the URLs cannot be used.
func NewNotifier(c *cobra.Command) (types.Notifier, error) {
	flag := c.PersistentFlags()

	urls, _ := flag.GetStringArray("notification-url")
	if len(urls) == 0 {
		logrus.Debug("No notification URLs configured")

		return nil, nil //nolint:nilnil
	}

	stdout, _ := flag.GetBool("notification-log-stdout")
	tplString, _ := flag.GetString("notification-template")
	data := GetTemplateData(c)

	logrus.WithFields(logrus.Fields{
		"services": len(urls),
		"template": tplString,
		"stdout":   stdout,
		"hostname": data.Host,
		"title":    data.Title,
	}).Debug("Creating notifier with configuration")

	notifier, err := createNotifier(urls, tplString, data, stdout)
	if err != nil {
		return nil, err
	}

	return notifier, nil
}

// GetTitle formats the title based on the passed hostname and tag.
func GetTitle(hostname string, tag string) string {
	titleBuilder := strings.Builder{}
	if tag != "" {
		titleBuilder.WriteRune('[')
		titleBuilder.WriteString(tag)
		titleBuilder.WriteRune(']')
		titleBuilder.WriteRune(' ')
	}

	titleBuilder.WriteString("tagreload")

	if hostname != "" {
		titleBuilder.WriteString(" on ")
		titleBuilder.WriteString(hostname)
	}

	return titleBuilder.String()
}

// GetTemplateData populates the static notification data from flags and environment.
func GetTemplateData(c *cobra.Command) StaticData {
	flag := c.PersistentFlags()

	hostname, _ := flag.GetString("notifications-hostname")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	title := ""

	if skip, _ := flag.GetBool("notification-skip-title"); !skip {
		tag, _ := flag.GetString("notification-title-tag")
		title = GetTitle(hostname, tag)
	}

	return StaticData{
		Host:  hostname,
		Title: title,
	}
}
