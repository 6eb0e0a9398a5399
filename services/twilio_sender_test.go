package services

import (
	"context"
	"errors"
	"testing"

	"recruit-reminder-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeMessages struct {
	calls []*twilioApi.CreateMessageParams
	err   error
}

func (f *fakeMessages) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSender_Channels(t *testing.T) {
	schedule := models.Schedule{Type: models.TypeESSubmit, CompanyName: "トヨタ", ScheduleDate: day(2025, 3, 15)}

	tests := []struct {
		name      string
		whatsApp  string
		recipient string
		wantTo    string
		wantFrom  string
	}{
		{"whatsapp", "+15550001111", "+819012345678", "whatsapp:+819012345678", "whatsapp:+15550001111"},
		{"sms without whatsapp sender", "", "+819012345678", "+819012345678", "+15550002222"},
		{"sms without plus prefix", "+15550001111", "819012345678", "819012345678", "+15550002222"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeMessages{}
			sender := &TwilioSender{api: api, phoneNumber: "+15550002222", whatsAppNumber: tt.whatsApp}

			require.NoError(t, sender.SendReminder(context.Background(), tt.recipient, schedule, 1))
			require.Len(t, api.calls, 1)
			assert.Equal(t, tt.wantTo, *api.calls[0].To)
			assert.Equal(t, tt.wantFrom, *api.calls[0].From)
			assert.Contains(t, *api.calls[0].Body, "D-1 リマインド")
		})
	}
}

func TestTwilioSender_Errors(t *testing.T) {
	api := &fakeMessages{err: errors.New("twilio 500")}
	sender := &TwilioSender{api: api, phoneNumber: "+15550002222"}

	err := sender.SendSummary(context.Background(), "+819012345678", nil, day(2025, 3, 10), day(2025, 3, 17))
	assert.ErrorContains(t, err, "twilio 500")

	assert.ErrorIs(t, sender.SendSummary(context.Background(), "", nil, day(2025, 3, 10), day(2025, 3, 17)), ErrNoRecipient)
	assert.ErrorIs(t, sender.SendSummary(context.Background(), "not-a-number", nil, day(2025, 3, 10), day(2025, 3, 17)), ErrInvalidRecipient)
	assert.Len(t, api.calls, 1)
}
