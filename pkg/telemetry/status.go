// Package telemetry publishes the robot status for remote monitoring.
package telemetry

import (
	"github.com/golang/protobuf/proto"
)

// Topics under <prefix><id>/.
const (
	TopicMeta      = "meta"
	TopicStatus    = "status"
	TopicConnected = "connected"
)

// Meta describes the robot, published as retained JSON.
type Meta struct {
	ID        string `json:"id"`
	Identity  string `json:"identity"`
	Transport string `json:"transport,omitempty"`
}

// Wheel is the output state of one motor.
type Wheel struct {
	Duty    uint32 `protobuf:"varint,1,opt,name=duty,proto3" json:"duty,omitempty"`
	Reverse bool   `protobuf:"varint,2,opt,name=reverse,proto3" json:"reverse,omitempty"`
	Enabled bool   `protobuf:"varint,3,opt,name=enabled,proto3" json:"enabled,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Wheel) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Wheel) Reset() { *m = Wheel{} }

// String implements proto.Message.
func (m *Wheel) String() string { return proto.CompactTextString(m) }

// Status is the periodic robot status.
type Status struct {
	Connected   bool   `protobuf:"varint,1,opt,name=connected,proto3" json:"connected,omitempty"`
	Left        *Wheel `protobuf:"bytes,2,opt,name=left,proto3" json:"left,omitempty"`
	Right       *Wheel `protobuf:"bytes,3,opt,name=right,proto3" json:"right,omitempty"`
	Commands    uint64 `protobuf:"varint,4,opt,name=commands,proto3" json:"commands,omitempty"`
	Failures    uint64 `protobuf:"varint,5,opt,name=failures,proto3" json:"failures,omitempty"`
	Disconnects uint64 `protobuf:"varint,6,opt,name=disconnects,proto3" json:"disconnects,omitempty"`
	Timestamp   int64  `protobuf:"varint,7,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Status) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Status) Reset() { *m = Status{} }

// String implements proto.Message.
func (m *Status) String() string { return proto.CompactTextString(m) }

// DecodeStatus decodes a Status payload.
func DecodeStatus(payload []byte) (*Status, error) {
	var st Status
	if err := proto.Unmarshal(payload, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
