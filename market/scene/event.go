package scene

import "github.com/m3rciful/surplusbot/market/domain"

// EventKind classifies an inbound event for dispatch.
type EventKind string

const (
	KindText    EventKind = "text"
	KindAction  EventKind = "action"
	KindCommand EventKind = "command"
)

// Button actions carried by inline keyboards.
const (
	ActionReserve  = "reserve"
	ActionCancel   = "cancel"
	ActionConfirm  = "confirm"
	ActionQuantity = "qty"
	ActionPage     = "page"
)

// Commands understood in every scene.
const (
	CommandStart    = "start"
	CommandMenu     = "menu"
	CommandLanguage = "language"
)

// PayloadSep separates fields of an action payload.
const PayloadSep = "|"

// Event is one inbound update of a chat. Text holds the message for KindText
// and the command name without slash for KindCommand.
type Event struct {
	ChatID  int64
	UserID  int64
	Kind    EventKind
	Text    string
	Action  string
	Payload string
}

// Button is one keyboard button. Label is a message key; Text is used as is
// when Label is empty.
type Button struct {
	Label   string
	Text    string
	Action  string
	Payload string
}

// Keyboard describes the markup attached to a reply.
type Keyboard struct {
	Inline bool
	Remove bool
	// Persistent keeps a reply keyboard open after a button is used.
	Persistent bool
	Rows       [][]Button
}

// Reply is a message to render and send. Key and Args select a localized
// template; ChatID may differ from the chat that triggered it.
type Reply struct {
	ChatID   int64
	Language domain.Language
	Key      string
	Args     map[string]string
	Keyboard *Keyboard
}

func replyKeyboard(rows ...[]string) *Keyboard {
	kb := &Keyboard{}
	for _, row := range rows {
		buttons := make([]Button, len(row))
		for i, label := range row {
			buttons[i] = Button{Label: label}
		}
		kb.Rows = append(kb.Rows, buttons)
	}
	return kb
}

func inlineKeyboard(rows ...[]Button) *Keyboard {
	return &Keyboard{Inline: true, Rows: rows}
}

var removeKeyboard = &Keyboard{Remove: true}
