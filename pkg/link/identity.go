package link

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver"
)

// SupportedVersions is the range of robot versions the Client speaks.
const SupportedVersions = ">= 1.0, < 2.0"

// Identity is the decoded identification line, like "ALFRED 1.0".
type Identity struct {
	Name    string
	Version *semver.Version
}

// String implements fmt.Stringer.
func (id *Identity) String() string {
	return id.Name + " " + id.Version.Original()
}

// ParseIdentity decodes an identification line.
func ParseIdentity(line string) (*Identity, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return nil, fmt.Errorf("invalid identity %q", line)
	}
	ver, err := semver.NewVersion(fields[1])
	if err != nil {
		return nil, fmt.Errorf("invalid version in identity %q: %v", line, err)
	}
	return &Identity{Name: fields[0], Version: ver}, nil
}

// Handshake identifies the robot and checks its version is supported.
func (c *Client) Handshake(ctx context.Context) (*Identity, error) {
	resp, err := c.Identify(ctx)
	if err != nil {
		return nil, err
	}
	id, err := ParseIdentity(resp)
	if err != nil {
		return nil, err
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		panic(err)
	}
	if !constraint.Check(id.Version) {
		return id, fmt.Errorf("unsupported robot %s, require %s", id, SupportedVersions)
	}
	return id, nil
}
