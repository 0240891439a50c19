package adapter

import (
	"fmt"
	"strings"
	"time"

	"github.com/kapu/carfinder-bot-go/internal/constants"
	"github.com/kapu/carfinder-bot-go/internal/domain"
	"github.com/kapu/carfinder-bot-go/internal/util"
)

// ResponseFormatter formats bot responses
type ResponseFormatter struct {
	prefix  string
	timeout time.Duration
}

// NewResponseFormatter creates a new ResponseFormatter
func NewResponseFormatter(prefix string, timeout time.Duration) *ResponseFormatter {
	if strings.TrimSpace(prefix) == "" {
		prefix = "/"
	}
	if timeout <= 0 {
		timeout = constants.PaginationConfig.Timeout
	}
	return &ResponseFormatter{prefix: prefix, timeout: timeout}
}

type selectionPageView struct {
	domain.SelectionPage
	TypedHint bool
}

// FormatSelectionPage renders one option page. typedHint adds the
// "< / >" instructions for transports without buttons.
func (f *ResponseFormatter) FormatSelectionPage(page domain.SelectionPage, typedHint bool) string {
	options := make([]string, len(page.Options))
	for i, opt := range page.Options {
		options[i] = util.TruncateString(opt, constants.StringLimits.OptionLabel)
	}
	page.Options = options

	text, err := render("selection_page.tmpl", selectionPageView{
		SelectionPage: page,
		TypedHint:     typedHint,
	})
	if err != nil {
		return f.FormatError("failed to render options")
	}
	return util.TruncateString(text, constants.StringLimits.MessageText)
}

// HelpEntry is one line of the help message.
type HelpEntry struct {
	Name        string
	Description string
}

// FormatHelp lists commands with the transport's prefix.
func (f *ResponseFormatter) FormatHelp(commands []HelpEntry) string {
	text, err := render("help.tmpl", struct {
		Prefix   string
		Timeout  string
		Commands []HelpEntry
	}{
		Prefix:   f.prefix,
		Timeout:  f.timeout.String(),
		Commands: commands,
	})
	if err != nil {
		return f.FormatError("failed to render help")
	}
	return text
}

func (f *ResponseFormatter) FormatHello() string {
	return "Hello fellow car guy!"
}

// FormatVehicleCaption is the photo caption for transports that can send images.
func (f *ResponseFormatter) FormatVehicleCaption(image domain.VehicleImage) string {
	return f.formatVehicle(image, false, constants.StringLimits.PhotoCaption)
}

// FormatVehicleMessage is the text-only result with the image URL inline.
func (f *ResponseFormatter) FormatVehicleMessage(image domain.VehicleImage) string {
	return f.formatVehicle(image, true, constants.StringLimits.MessageText)
}

func (f *ResponseFormatter) formatVehicle(image domain.VehicleImage, withURL bool, limit int) string {
	text, err := render("vehicle.tmpl", struct {
		domain.VehicleImage
		WithURL bool
	}{
		VehicleImage: image,
		WithURL:      withURL,
	})
	if err != nil {
		return image.Vehicle.String()
	}
	return util.TruncateString(text, limit)
}

// FormatNotice formats a dialogue notice.
func (f *ResponseFormatter) FormatNotice(text string) string {
	return fmt.Sprintf("⚠️ %s", text)
}

// FormatBusy tells a user their previous search is still running.
func (f *ResponseFormatter) FormatBusy() string {
	return f.FormatNotice(fmt.Sprintf("You already have a car search running here. Finish it before starting another %scar.", f.prefix))
}

// FormatError formats error message
func (f *ResponseFormatter) FormatError(message string) string {
	return fmt.Sprintf("An error occurred: %s", message)
}
