package services

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/lewlew/lewlew-server/internal/config"
)

// SMSService delivers verification codes over Twilio. In development mode
// nothing is sent and a fixed code is accepted, so the full signup flow
// works without a Twilio account.
type SMSService struct {
	cfg    *config.Config
	client *twilio.RestClient
}

func NewSMSService(cfg *config.Config) *SMSService {
	s := &SMSService{cfg: cfg}
	if cfg.SMSEnabled {
		s.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}
	return s
}

// GenerateCode produces a six-digit numeric code. In development mode the
// configured fixed code is returned instead so clients can automate login.
func (s *SMSService) GenerateCode() (string, error) {
	if s.cfg.DevelopmentMode {
		return s.cfg.FixedVerifyCode, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendCode delivers the verification code. Disabled SMS (development or
// missing credentials) logs instead of sending.
func (s *SMSService) SendCode(phoneNumber, code string) error {
	if !s.cfg.SMSEnabled || s.client == nil {
		slog.Info("sms disabled, skipping send", "phone", phoneNumber)
		return nil
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(phoneNumber)
	params.SetFrom(s.cfg.TwilioFromNumber)
	params.SetBody(fmt.Sprintf("Your verification code is %s", code))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	return nil
}
