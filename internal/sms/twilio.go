// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sms delivers one-time login codes to farmers' phones.

Dispatchers:

  - TwilioDispatcher: production delivery through the Twilio Messages API.
  - LogDispatcher: development stand-in that writes the code to the log.

Both satisfy the dispatcher interface declared by the auth service.
*/
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taibuivan/krishimitra/internal/platform/ctxutil"
)

// twilioInvalidNumber is Twilio's error code for an invalid 'To' number.
const twilioInvalidNumber = 21211

// MessageTemplate formats the SMS body around the code.
const MessageTemplate = "Your Krishi Mitra OTP is: %s"

// ErrInvalidNumber reports that the provider rejected the destination number.
var ErrInvalidNumber = &InvalidNumberError{}

// InvalidNumberError is returned when retrying with the same number cannot succeed.
type InvalidNumberError struct {
	Detail string
}

func (e *InvalidNumberError) Error() string {
	if e.Detail == "" {
		return "sms: invalid destination number"
	}
	return "sms: invalid destination number: " + e.Detail
}

// InvalidNumber marks the error as permanent for the destination.
func (e *InvalidNumberError) InvalidNumber() bool { return true }

// Is lets errors.Is match any InvalidNumberError against [ErrInvalidNumber].
func (e *InvalidNumberError) Is(target error) bool {
	_, ok := target.(*InvalidNumberError)
	return ok
}

// TwilioConfig holds the account credentials and delivery settings.
type TwilioConfig struct {
	AccountSID    string
	AuthToken     string
	FromNumber    string
	BaseURL       string
	CountryPrefix string
	Timeout       time.Duration
}

// TwilioDispatcher sends codes through the Twilio Messages REST API.
type TwilioDispatcher struct {
	config TwilioConfig
	client *http.Client
}

// NewTwilioDispatcher creates a dispatcher whose HTTP client owns the timeout.
func NewTwilioDispatcher(config TwilioConfig) *TwilioDispatcher {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.twilio.com"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &TwilioDispatcher{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// twilioError is the JSON body Twilio returns with 4xx/5xx responses.
type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Send posts a message with the code to the E.164 form of mobile.
func (dispatcher *TwilioDispatcher) Send(ctx context.Context, mobile, code string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(dispatcher.config.BaseURL, "/"), url.PathEscape(dispatcher.config.AccountSID))

	form := url.Values{}
	form.Set("To", E164(dispatcher.config.CountryPrefix, mobile))
	form.Set("From", dispatcher.config.FromNumber)
	form.Set("Body", fmt.Sprintf(MessageTemplate, code))

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms_twilio_request_failed: %w", err)
	}
	request.SetBasicAuth(dispatcher.config.AccountSID, dispatcher.config.AuthToken)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Accept", "application/json")

	response, err := dispatcher.client.Do(request)
	if err != nil {
		return fmt.Errorf("sms_twilio_send_failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}

	var apiError twilioError
	if err := json.NewDecoder(io.LimitReader(response.Body, 16<<10)).Decode(&apiError); err != nil {
		return fmt.Errorf("sms_twilio_send_failed: status %d", response.StatusCode)
	}

	if apiError.Code == twilioInvalidNumber {
		return &InvalidNumberError{Detail: apiError.Message}
	}

	ctxutil.GetLogger(ctx).WarnContext(ctx, "sms_twilio_rejected",
		slog.Int("status", response.StatusCode),
		slog.Int("twilio_code", apiError.Code),
	)
	return fmt.Errorf("sms_twilio_send_failed: status %d code %d: %s",
		response.StatusCode, apiError.Code, apiError.Message)
}

// E164 prefixes a national number with the country code unless it already
// carries one.
func E164(countryPrefix, mobile string) string {
	mobile = strings.TrimSpace(mobile)
	if strings.HasPrefix(mobile, "+") || countryPrefix == "" {
		return mobile
	}
	return countryPrefix + mobile
}

// # Development Dispatcher

// LogDispatcher writes codes to the structured log instead of sending them.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher creates a [LogDispatcher].
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Send logs the code. It never fails.
func (dispatcher *LogDispatcher) Send(ctx context.Context, mobile, code string) error {
	dispatcher.logger.InfoContext(ctx, "sms_code_logged",
		slog.String("mobile", mobile),
		slog.String("code", code),
		slog.String("request_id", ctxutil.GetRequestID(ctx)),
	)
	return nil
}
