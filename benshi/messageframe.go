// Package benshi is a worked example consuming github.com/benshi-go/bitwire:
// the framing layer of the Benshi handheld-radio protocol, grounded in the
// benlink Python source's messageframe.py / gaiaframe.py /
// event_notification.py / command/vm.py / status.py.
//
// It exists to exercise bitwire's reorder adapter and all three
// dynamic-field arities against a real, non-synthetic schema rather than
// only against invented toy records. It is a consumer of bitwire, never
// imported by it, and intentionally stops short of the full Benshi command
// catalogue, channel/radio settings, transport, and audio framing.
package benshi

import (
	"fmt"

	"github.com/benshi-go/bitwire"
)

// FrameOptions mirrors messageframe.py's FrameOptions IntFlag.
type FrameOptions uint8

const (
	FrameOptionsNone     FrameOptions = 0
	FrameOptionsChecksum FrameOptions = 1
)

// FrameTypeGroup mirrors messageframe.py's FrameTypeGroup.
type FrameTypeGroup uint16

const (
	FrameTypeGroupBasic    FrameTypeGroup = 2
	FrameTypeGroupExtended FrameTypeGroup = 10
)

// FrameTypeBasic mirrors a representative subset of messageframe.py's
// FrameTypeBasic enum — the full ~75-entry radio command catalogue is
// exactly the payload schema this package excludes, so only enough of the
// catalogue survives here to prove the frame-type dynamic dispatch
// round-trips.
type FrameTypeBasic uint16

const (
	FrameTypeBasicUnknown       FrameTypeBasic = 0
	FrameTypeBasicGetDevID      FrameTypeBasic = 1
	FrameTypeBasicGetDevInfo    FrameTypeBasic = 4
	FrameTypeBasicReadStatus    FrameTypeBasic = 5
	FrameTypeBasicEventNotif    FrameTypeBasic = 9
	FrameTypeBasicGetHTStatus   FrameTypeBasic = 20
)

// FrameTypeExtended mirrors a representative subset of
// messageframe.py's FrameTypeExtended enum.
type FrameTypeExtended uint16

const (
	FrameTypeExtendedUnknown       FrameTypeExtended = 0
	FrameTypeExtendedGetBTSignal   FrameTypeExtended = 769
	FrameTypeExtendedGetDevStateVar FrameTypeExtended = 16387
)

// MessageFrame is the record schema from messageframe.py's MessageFrame
// Bitfield, translated field for field.
var MessageFrame = mustBuildMessageFrame()

func mustBuildMessageFrame() *bitwire.RecordDef {
	typeField, err := bitwire.Dynamic(func(proxy *bitwire.SiblingProxy) (any, error) {
		switch proxy.Get("type_group").(FrameTypeGroup) {
		case FrameTypeGroupBasic:
			return bitwire.IntEnum(15, []FrameTypeBasic{
				FrameTypeBasicUnknown, FrameTypeBasicGetDevID, FrameTypeBasicGetDevInfo,
				FrameTypeBasicReadStatus, FrameTypeBasicEventNotif, FrameTypeBasicGetHTStatus,
			}), nil
		case FrameTypeGroupExtended:
			return bitwire.IntEnum(15, []FrameTypeExtended{
				FrameTypeExtendedUnknown, FrameTypeExtendedGetBTSignal, FrameTypeExtendedGetDevStateVar,
			}), nil
		default:
			return nil, fmt.Errorf("benshi: unknown frame type group %v", proxy.Get("type_group"))
		}
	})
	if err != nil {
		panic(err)
	}

	bodyField, err := bitwire.Dynamic(func(proxy *bitwire.SiblingProxy) (any, error) {
		n := proxy.Get("n_bytes_body").(uint64)
		return bitwire.BytesField(int(n)), nil
	})
	if err != nil {
		panic(err)
	}

	checksumField, err := bitwire.Dynamic(func(proxy *bitwire.SiblingProxy) (any, error) {
		if proxy.Get("options").(FrameOptions)&FrameOptionsChecksum != 0 {
			return bitwire.IntegerField(8), nil
		}
		return nil, nil
	}, bitwire.WithDefault(nil))
	if err != nil {
		panic(err)
	}

	rec, err := bitwire.NewRecord("MessageFrame", nil,
		bitwire.F("header", []byte{0xFF, 0x01}),
		bitwire.F("options", bitwire.IntEnum(8, []FrameOptions{FrameOptionsNone, FrameOptionsChecksum})),
		bitwire.F("n_bytes_body", bitwire.IntegerField(8)),
		bitwire.F("type_group", bitwire.IntEnum(16, []FrameTypeGroup{FrameTypeGroupBasic, FrameTypeGroupExtended})),
		bitwire.F("is_reply", bitwire.BoolField()),
		bitwire.F("type", typeField),
		bitwire.F("body", bodyField),
		bitwire.F("checksum", checksumField),
	)
	if err != nil {
		panic(err)
	}
	return rec
}
