package adapter

import (
	"strings"

	"github.com/kapu/carfinder-bot-go/internal/domain"
	"github.com/kapu/carfinder-bot-go/internal/util"
)

// MessageAdapter converts chat text into bot commands.
type MessageAdapter struct {
	prefix string
}

// NewMessageAdapter creates a new MessageAdapter
func NewMessageAdapter(prefix string) *MessageAdapter {
	return &MessageAdapter{prefix: prefix}
}

// ParsedCommand represents a parsed command
type ParsedCommand struct {
	Type       domain.CommandType
	Args       []string
	RawMessage string
}

// IsCommand reports whether text starts with the command prefix.
func (ma *MessageAdapter) IsCommand(text string) bool {
	text = strings.TrimSpace(text)
	return len(text) > len(ma.prefix) && strings.HasPrefix(text, ma.prefix)
}

// ParseMessage parses one chat message. Text without the prefix, or with an
// unrecognized command word, yields CommandUnknown.
func (ma *MessageAdapter) ParseMessage(text string) *ParsedCommand {
	text = strings.TrimSpace(text)
	if !ma.IsCommand(text) {
		return ma.createUnknownCommand(text)
	}

	parts := strings.Fields(strings.TrimSpace(text[len(ma.prefix):]))
	if len(parts) == 0 {
		return ma.createUnknownCommand(text)
	}

	// Telegram appends "@botname" in group chats.
	command := strings.ToLower(parts[0])
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}
	args := parts[1:]

	var cmdType domain.CommandType
	switch {
	case ma.isCarCommand(command):
		cmdType = domain.CommandCar
	case ma.isHelloCommand(command):
		cmdType = domain.CommandHello
	case ma.isHelpCommand(command):
		cmdType = domain.CommandHelp
	default:
		return ma.createUnknownCommand(text)
	}

	return &ParsedCommand{
		Type:       cmdType,
		Args:       args,
		RawMessage: text,
	}
}

// ParsePageTurn recognizes typed page-turn tokens for transports without
// buttons.
func ParsePageTurn(text string) (domain.InputKind, bool) {
	switch util.Normalize(text) {
	case "<", "prev", "previous":
		return domain.InputPrevPage, true
	case ">", "next":
		return domain.InputNextPage, true
	}
	return domain.InputText, false
}

// Command matchers

func (ma *MessageAdapter) isCarCommand(cmd string) bool {
	return util.Contains([]string{"car", "cars", "vehicle"}, cmd)
}

func (ma *MessageAdapter) isHelloCommand(cmd string) bool {
	return util.Contains([]string{"hello", "hi"}, cmd)
}

func (ma *MessageAdapter) isHelpCommand(cmd string) bool {
	return util.Contains([]string{"help", "commands", "start"}, cmd)
}

func (ma *MessageAdapter) createUnknownCommand(text string) *ParsedCommand {
	return &ParsedCommand{
		Type:       domain.CommandUnknown,
		RawMessage: text,
	}
}
