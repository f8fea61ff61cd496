// Package mocks provides mock implementations for testing the portal services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the backend
// gateway ports and the cache repository.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	gw := mocks.NewMockAuthGateway(ctrl)
//	gw.EXPECT().VerifyToken(gomock.Any(), "tok").Return(resp, nil)
package mocks

// AuthGateway: ValidateTelegram, LoginWithCode, LookupSession, VerifyToken, Logout, LogoutAll
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=auth_gateway_mock.go github.com/naidizakupku/portal/internal/ports AuthGateway

// ContentGateway: NewsTop, CommonInfo
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=content_gateway_mock.go github.com/naidizakupku/portal/internal/ports ContentGateway

// BotGateway: BotInfo, BotQRCode
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=bot_gateway_mock.go github.com/naidizakupku/portal/internal/ports BotGateway

// CacheRepository: Set, Get, Delete, SetTTL, SetIfNotExists, CompareAndDelete, Health
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/naidizakupku/portal/internal/core CacheRepository
