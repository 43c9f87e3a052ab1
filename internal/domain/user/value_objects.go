package user

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail = errors.New("invalid email format")
	ErrInvalidRole  = errors.New("invalid role")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email is the notification address. The domain part is lowercased so
// the outbox never queues two spellings of one mailbox.
type Email struct {
	value string
}

func NewEmail(s string) (Email, error) {
	s = strings.TrimSpace(s)
	if !emailPattern.MatchString(s) {
		return Email{}, ErrInvalidEmail
	}
	at := strings.LastIndexByte(s, '@')
	return Email{value: s[:at] + strings.ToLower(s[at:])}, nil
}

func (e Email) Value() string { return e.value }

func (e Email) String() string { return e.value }
