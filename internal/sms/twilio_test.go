// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sms_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/krishimitra/internal/sms"
)

func newDispatcher(baseURL string, timeout time.Duration) *sms.TwilioDispatcher {
	return sms.NewTwilioDispatcher(sms.TwilioConfig{
		AccountSID:    "AC123",
		AuthToken:     "token",
		FromNumber:    "+15005550006",
		BaseURL:       baseURL,
		CountryPrefix: "+91",
		Timeout:       timeout,
	})
}

func TestTwilioDispatcher_Send(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer server.Close()

	err := newDispatcher(server.URL, time.Second).Send(context.Background(), "9876543210", "4821")
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", got.URL.Path)
	assert.Equal(t, "+919876543210", got.PostForm.Get("To"))
	assert.Equal(t, "+15005550006", got.PostForm.Get("From"))
	assert.Equal(t, "Your Krishi Mitra OTP is: 4821", got.PostForm.Get("Body"))

	user, pass, ok := got.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "AC123", user)
	assert.Equal(t, "token", pass)
}

func TestTwilioDispatcher_Failures(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		invalidNumber bool
	}{
		{"invalid_number", http.StatusBadRequest, `{"code":21211,"message":"Invalid 'To' Phone Number","status":400}`, true},
		{"auth_failure", http.StatusUnauthorized, `{"code":20003,"message":"Authenticate","status":401}`, false},
		{"html_outage", http.StatusBadGateway, `<html>bad gateway</html>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := newDispatcher(server.URL, time.Second).Send(context.Background(), "9876543210", "4821")

			require.Error(t, err)
			assert.Equal(t, tt.invalidNumber, errors.Is(err, sms.ErrInvalidNumber))
		})
	}
}

func TestTwilioDispatcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	err := newDispatcher(server.URL, 50*time.Millisecond).Send(context.Background(), "9876543210", "4821")

	require.Error(t, err)
	assert.False(t, errors.Is(err, sms.ErrInvalidNumber))
}

func TestE164(t *testing.T) {
	assert.Equal(t, "+919876543210", sms.E164("+91", "9876543210"))
	assert.Equal(t, "+447700900123", sms.E164("+91", "+447700900123"))
	assert.Equal(t, "9876543210", sms.E164("", "9876543210"))
}

func TestLogDispatcher_Send(t *testing.T) {
	var buf bytes.Buffer
	dispatcher := sms.NewLogDispatcher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, dispatcher.Send(context.Background(), "9876543210", "4821"))
	assert.Contains(t, buf.String(), `"code":"4821"`)
}
