package storage

// Store persists device usage counters, email registrations and licenses.
// Scout results are deliberately never stored — every request scouts fresh.
type Store interface {
	TotalCount(deviceID string) (int, error)
	DailyCount(deviceID, day string) (int, error)
	IncrTotal(deviceID string, amount int) error
	IncrDaily(deviceID string, amount int, day string) error

	// EmailForDevice returns "" when the device has no registered email.
	EmailForDevice(deviceID string) (string, error)
	SetDeviceEmail(deviceID, email string) error

	CreateLicense(key, email, plan string) error
	// BindLicense binds key to deviceID. A key already bound to another
	// device is refused; rebinding to the same device is a no-op success.
	BindLicense(key, deviceID string) (bool, string, error)
	IsDevicePaid(deviceID string) (bool, error)

	Close() error
}
