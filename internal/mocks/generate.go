// Package mocks provides mock implementations for testing the console gateway.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository and port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	gateway := mocks.NewMockBackendGateway(ctrl)
//	gateway.EXPECT().Login(gomock.Any(), gomock.Any()).Return(result, nil)
package mocks

// Generate mock for DeviceRepository interface from internal/core package.
// This creates MockDeviceRepository with methods for all DeviceRepository interface methods:
// Record, GetByID, List, Revoke, DeleteForUser
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=device_repository_mock.go github.com/fooddash/console-api/internal/core DeviceRepository

// Generate mock for BackendGateway interface from internal/ports package.
// This creates MockBackendGateway with methods for all BackendGateway interface methods:
// Login, Register, Logout, CurrentUser, CurrentSubscription
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=backend_gateway_mock.go github.com/fooddash/console-api/internal/ports BackendGateway
