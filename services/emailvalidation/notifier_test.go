package emailvalidation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/mailcheck/services/mail"
	"github.com/tech-arch1tect/mailcheck/testutils"
	gomail "github.com/wneessen/go-mail"
)

type capturingClient struct {
	sent []*gomail.Msg
}

func (c *capturingClient) DialAndSend(messages ...*gomail.Msg) error {
	c.sent = append(c.sent, messages...)
	return nil
}

func TestMailNotifier_Send(t *testing.T) {
	user := &User{ID: uuid.New(), Email: "alice@example.com", Name: "Alice"}
	link := "https://cms.example.com/validate?token=abc"

	t.Run("sends the configured template to the user", func(t *testing.T) {
		mailService := &testutils.MockMailService{}
		mailService.On("SendTemplate",
			"validate_email",
			[]string{"alice@example.com"},
			"Please validate",
			mock.MatchedBy(func(data map[string]any) bool {
				return data[DataUser] == user && data[DataLinkURL] == link && data["AppName"] == "Test App"
			}),
		).Return(nil).Once()

		notifier := NewMailNotifier(mailService, "validate_email", "Please validate", "Test App", nil)

		err := notifier.Send(map[string]any{DataUser: user, DataLinkURL: link})

		require.NoError(t, err)
		mailService.AssertExpectations(t)
	})

	t.Run("transport errors are delivery failures", func(t *testing.T) {
		mailService := &testutils.MockMailService{}
		mailService.On("SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assertErr)

		notifier := NewMailNotifier(mailService, "validate_email", "Please validate", "Test App", nil)

		err := notifier.Send(map[string]any{DataUser: user, DataLinkURL: link})

		assert.ErrorIs(t, err, ErrDeliveryFailed)
		assert.ErrorIs(t, err, assertErr)
	})

	t.Run("missing mail service", func(t *testing.T) {
		notifier := NewMailNotifier(nil, "validate_email", "Please validate", "Test App", nil)

		err := notifier.Send(map[string]any{DataUser: user, DataLinkURL: link})

		assert.ErrorIs(t, err, ErrDeliveryFailed)
	})

	t.Run("invalid payloads", func(t *testing.T) {
		mailService := &testutils.MockMailService{}
		notifier := NewMailNotifier(mailService, "validate_email", "Please validate", "Test App", nil)

		payloads := []map[string]any{
			{DataLinkURL: link},
			{DataUser: (*User)(nil), DataLinkURL: link},
			{DataUser: &User{ID: uuid.New()}, DataLinkURL: link},
			{DataUser: user},
		}
		for _, payload := range payloads {
			assert.ErrorIs(t, notifier.Send(payload), ErrInvalidArgument)
		}

		mailService.AssertNotCalled(t, "SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMailNotifier_DefaultTemplates(t *testing.T) {
	client := &capturingClient{}
	cfg := testutils.GetTestConfig()
	mailService, err := mail.NewServiceWithClient(&cfg.Mail, nil, client)
	require.NoError(t, err)
	require.NoError(t, mailService.AddTemplatesFS(DefaultTemplates, DefaultTemplatesDir))

	notifier := NewMailNotifier(mailService, "validate_email", "Please validate", "Test App", nil)
	user := &User{ID: uuid.New(), Email: "alice@example.com", Name: "Alice"}
	link := "https://cms.example.com/validate?token=" + uuid.NewString()

	err = notifier.Send(map[string]any{DataUser: user, DataLinkURL: link})

	require.NoError(t, err)
	require.Len(t, client.sent, 1)

	var bodies []string
	for _, part := range client.sent[0].GetParts() {
		content, err := part.GetContent()
		require.NoError(t, err)
		bodies = append(bodies, string(content))
	}
	require.Len(t, bodies, 2)
	for _, body := range bodies {
		assert.Contains(t, body, "Hello Alice,")
		assert.Contains(t, body, "Test App")
		assert.True(t, strings.Contains(body, link), "body should contain the validation link")
	}
}
