package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"financetrack/internal/domain"
)

// SMTP sends the notification mail through a plain relay. No auth is used;
// the relay is expected to be a local forwarder.
type SMTP struct {
	Addr string
	From string
}

// NewSMTP builds a mail notifier for the given relay address.
func NewSMTP(addr, from string) *SMTP {
	return &SMTP{Addr: addr, From: from}
}

func (s *SMTP) DonationReceived(ctx context.Context, recipientIdentity, donorIdentity string, amountCents int64) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Donation Received!\r\n\r\n"+
			"Hello,\r\n\r\nYou have received a donation of $%s from %s.\r\n\r\nBest,\r\nFinanceTrack\r\n",
		s.From, recipientIdentity, domain.FormatCents(amountCents), donorIdentity,
	)
	if err := smtp.SendMail(s.Addr, nil, s.From, []string{recipientIdentity}, []byte(body)); err != nil {
		return fmt.Errorf("send donation mail: %w", err)
	}
	return nil
}

var _ Notifier = (*SMTP)(nil)
