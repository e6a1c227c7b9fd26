package tracker

import "strings"

// Kind is what a chat message asks the tracker to do.
type Kind int

const (
	KindOther Kind = iota
	KindStart
	KindEnd
	KindGreeting
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	case KindGreeting:
		return "greeting"
	default:
		return "other"
	}
}

var greetings = []string{"おはよう", "こんにちは", "こんばんは"}

// Classify maps message text to a Kind. Commands must be the whole message;
// greetings may appear anywhere in it.
func Classify(text string) Kind {
	normalized := strings.ToLower(strings.TrimSpace(text))
	switch normalized {
	case "start":
		return KindStart
	case "end":
		return KindEnd
	}
	for _, g := range greetings {
		if strings.Contains(normalized, g) {
			return KindGreeting
		}
	}
	return KindOther
}
