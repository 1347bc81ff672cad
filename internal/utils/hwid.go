package utils

import "github.com/denisbrodbeck/machineid"

// HWID is a stable, app-scoped identifier for this device. Sent with every
// API request so the backend can tell concurrent clients apart.
var HWID = getHWID()

func getHWID() string {
	id, err := machineid.ProtectedID("sharesync")
	if err != nil {
		return "unknown"
	}
	return id
}
