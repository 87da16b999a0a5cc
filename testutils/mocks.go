package testutils

import (
	"github.com/stretchr/testify/mock"
)

type MockMailService struct {
	mock.Mock
}

func (m *MockMailService) SendTemplate(templateName string, to []string, subject string, data map[string]any) error {
	args := m.Called(templateName, to, subject, data)
	return args.Error(0)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) Send(data map[string]any) error {
	args := m.Called(data)
	return args.Error(0)
}
