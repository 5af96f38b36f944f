package ui

import (
	"github.com/vanderheijden86/affectmap/pkg/app"
	"github.com/vanderheijden86/affectmap/pkg/interact"
)

// statusMessage is one entry of the auto-dismissing message stack.
type statusMessage struct {
	id     int
	text   string
	notice bool
}

// statusSink collects what the App reports so View can render it. It is
// only touched from the bubbletea update loop.
type statusSink struct {
	detail   *interact.DetailPayload
	counts   app.Counts
	loading  bool
	messages []statusMessage
	nextID   int
	// unscheduled holds ids whose dismiss timer has not been started.
	unscheduled []int
}

var _ app.StatusSink = (*statusSink)(nil)

func (s *statusSink) Detail(d *interact.DetailPayload) { s.detail = d }
func (s *statusSink) Counts(c app.Counts)              { s.counts = c }
func (s *statusSink) Loading(loading bool)             { s.loading = loading }

func (s *statusSink) Error(msg string) { s.push(msg, false) }

// Notice shows an informational message with the same lifetime as errors.
func (s *statusSink) Notice(msg string) { s.push(msg, true) }

func (s *statusSink) push(text string, notice bool) {
	s.nextID++
	s.messages = append(s.messages, statusMessage{id: s.nextID, text: text, notice: notice})
	s.unscheduled = append(s.unscheduled, s.nextID)
}

// takeUnscheduled returns and forgets the ids that still need a timer.
func (s *statusSink) takeUnscheduled() []int {
	ids := s.unscheduled
	s.unscheduled = nil
	return ids
}

// dismiss drops one message.
func (s *statusSink) dismiss(id int) {
	for i, m := range s.messages {
		if m.id == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}
