package billingsession

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/tax/selection"
)

// session is one invoice-editing session. The controller guards the tax
// state; mu guards the invoice binding and notice only. saving serializes
// invoice writes made from this session.
type session struct {
	id         string
	currency   string
	openedAt   time.Time
	controller *selection.Controller
	saving     sync.Mutex

	mu        sync.Mutex
	invoiceID snowflake.ID
	noticeMsg string
}

func (s *session) invoice() snowflake.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoiceID
}

func (s *session) bind(invoiceID snowflake.ID) {
	s.mu.Lock()
	s.invoiceID = invoiceID
	s.mu.Unlock()
}

func (s *session) notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noticeMsg
}

func (s *session) setNotice(msg string) {
	s.mu.Lock()
	s.noticeMsg = msg
	s.mu.Unlock()
}
