package domain

// SelectionPage is one rendered page of a selection step. It is derived on
// every render and never stored.
type SelectionPage struct {
	Step    Step
	Title   string
	Prompt  string
	Options []string
	Index   int
	Total   int
}

// HasPrev reports whether a previous page exists.
func (p SelectionPage) HasPrev() bool {
	return p.Index > 0
}

// HasNext reports whether a following page exists.
func (p SelectionPage) HasNext() bool {
	return p.Index < p.Total-1
}

// Paginated reports whether page-turn affordances are useful.
func (p SelectionPage) Paginated() bool {
	return p.Total > 1
}

// InputKind distinguishes typed replies from page-turn signals.
type InputKind int

const (
	InputText InputKind = iota
	InputPrevPage
	InputNextPage
)

func (k InputKind) String() string {
	switch k {
	case InputText:
		return "text"
	case InputPrevPage:
		return "prev"
	case InputNextPage:
		return "next"
	default:
		return "unknown"
	}
}

// IsPageTurn reports whether k is a page-turn signal.
func (k InputKind) IsPageTurn() bool {
	return k == InputPrevPage || k == InputNextPage
}

// Input is one event received while a selection waits.
type Input struct {
	Kind InputKind
	Text string
}

func TextInput(text string) Input {
	return Input{Kind: InputText, Text: text}
}

func PageTurn(kind InputKind) Input {
	return Input{Kind: kind}
}

// OutcomeKind is the terminal state of one selection.
type OutcomeKind int

const (
	OutcomeResolved OutcomeKind = iota
	OutcomeTimedOut
	OutcomeAborted
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeResolved:
		return "resolved"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome is either a resolved value or a terminal sentinel, never absent.
type Outcome struct {
	Kind  OutcomeKind
	Value string
}

func Resolved(value string) Outcome {
	return Outcome{Kind: OutcomeResolved, Value: value}
}

func TimedOut() Outcome {
	return Outcome{Kind: OutcomeTimedOut}
}

func Aborted() Outcome {
	return Outcome{Kind: OutcomeAborted}
}

func (o Outcome) IsResolved() bool {
	return o.Kind == OutcomeResolved
}
