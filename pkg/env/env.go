// Package env provides facts about the host the robot runs on.
package env

import (
	"os"
	"strings"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID salts the machine ID so it is not exposed verbatim.
const AppID = "alfred"

// MachineID retrieves the unique ID of the machine, hashed with AppID.
// It falls back to the host name if the machine ID is unavailable.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil {
		return id
	}
	glog.Warningf("env: machine id unavailable: %v", err)
	if name, err := os.Hostname(); err == nil {
		return strings.ToLower(name)
	}
	return AppID
}

// ShortID is the first n characters of the MachineID.
func ShortID(n int) string {
	id := MachineID()
	if n > 0 && len(id) > n {
		id = id[:n]
	}
	return id
}
