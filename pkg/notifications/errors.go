package notifications

import "errors"

var (
	// errCreateSenderFailed indicates the Shoutrrr sender could not be built from the URLs.
	errCreateSenderFailed = errors.New("failed to initialize shoutrrr notifications")
	// errParseTemplateFailed indicates the configured notification template is invalid.
	errParseTemplateFailed = errors.New("failed to parse notification template")
	// errExecuteTemplateFailed indicates the notification template failed to render.
	errExecuteTemplateFailed = errors.New("failed to execute notification template")
)
