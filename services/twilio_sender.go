// services/twilio_sender.go
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"recruit-reminder-backend/models"
	"recruit-reminder-backend/utils"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	PhoneNumber    string
	WhatsAppNumber string
}

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender delivers over WhatsApp when the recipient is in E.164 form
// and a WhatsApp sender is configured, otherwise over SMS.
type TwilioSender struct {
	api            messageCreator
	phoneNumber    string
	whatsAppNumber string
}

func NewTwilioSender(cfg TwilioConfig) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{
		api:            client.Api,
		phoneNumber:    cfg.PhoneNumber,
		whatsAppNumber: cfg.WhatsAppNumber,
	}
}

func (s *TwilioSender) SendReminder(ctx context.Context, recipient string, schedule models.Schedule, offsetDays int) error {
	return s.send(ctx, recipient, FormatReminder(schedule, offsetDays))
}

func (s *TwilioSender) SendSummary(ctx context.Context, recipient string, schedules []models.Schedule, rangeStart, rangeEnd time.Time) error {
	return s.send(ctx, recipient, FormatWeeklySummary(schedules, rangeStart, rangeEnd))
}

func (s *TwilioSender) send(ctx context.Context, recipient, body string) error {
	if recipient == "" {
		return ErrNoRecipient
	}
	if !utils.ValidatePhone(recipient) {
		return fmt.Errorf("%w: %s", ErrInvalidRecipient, recipient)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)

	channel := "sms"
	if strings.HasPrefix(recipient, "+") && s.whatsAppNumber != "" {
		channel = "whatsapp"
		params.SetTo("whatsapp:" + recipient)
		params.SetFrom("whatsapp:" + s.whatsAppNumber)
	} else {
		params.SetTo(recipient)
		params.SetFrom(s.phoneNumber)
	}

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio %s to %s: %w", channel, recipient, err)
	}
	if resp != nil && resp.Sid != nil {
		log.Printf("[notify] %s message sent to %s, SID: %s", channel, recipient, *resp.Sid)
	} else {
		log.Printf("[notify] %s message sent to %s, but no SID returned", channel, recipient)
	}
	return nil
}
