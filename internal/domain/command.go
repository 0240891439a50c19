package domain

type CommandType string

const (
	CommandCar     CommandType = "car"
	CommandHello   CommandType = "hello"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

func (c CommandType) String() string {
	return string(c)
}

func (c CommandType) IsValid() bool {
	switch c {
	case CommandCar, CommandHello, CommandHelp, CommandUnknown:
		return true
	default:
		return false
	}
}
