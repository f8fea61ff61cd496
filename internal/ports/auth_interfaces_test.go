package ports_test

import (
	"testing"

	"github.com/naidizakupku/portal/internal/mocks"
	mockauth "github.com/naidizakupku/portal/internal/mocks/auth"
	"github.com/naidizakupku/portal/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.CredentialChannel = (*mockauth.MemoryChannel)(nil)
	var _ ports.CredentialChannel = (*mockauth.FailingChannel)(nil)
	var _ ports.LaunchExtractor = mockauth.StaticExtractor{}
	var _ ports.AuthGateway = (*mocks.MockAuthGateway)(nil)
	var _ ports.ContentGateway = (*mocks.MockContentGateway)(nil)
	var _ ports.BotGateway = (*mocks.MockBotGateway)(nil)
}
