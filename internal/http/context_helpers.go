package httpx

import "context"

// deviceKey is an unexported context key type to avoid collisions across packages.
type deviceKey struct{}

// SetDeviceInContext returns a child context carrying the caller's device id.
// An empty id returns ctx unchanged.
func SetDeviceInContext(ctx context.Context, device string) context.Context {
	if device == "" {
		return ctx
	}
	return context.WithValue(ctx, deviceKey{}, device)
}

// DeviceFromContext returns the device id set by the DeviceID middleware.
func DeviceFromContext(ctx context.Context) string {
	if d, ok := ctx.Value(deviceKey{}).(string); ok {
		return d
	}
	return ""
}
