package benshi

import (
	"fmt"
	"math"

	"github.com/benshi-go/bitwire"
)

// EventType mirrors a representative subset of event_notification.py's
// EventType enum. HT_SETTINGS_CHANGED is omitted because its payload
// (RadioSettings) is exactly the radio-semantics payload schema this
// package treats as out of scope; the other branches below still exercise
// every dynamic-dispatch and reorder mechanism bitwire provides.
type EventType uint8

const (
	EventTypeUnknown         EventType = 0
	EventTypeHTStatusChanged EventType = 1
	EventTypeDataRxd         EventType = 2
)

// ChannelType mirrors event_notification.py's ChannelType enum.
type ChannelType uint8

const (
	ChannelTypeOff ChannelType = 0
	ChannelTypeA   ChannelType = 1
	ChannelTypeB   ChannelType = 2
)

var channelTypeValues = []ChannelType{ChannelTypeOff, ChannelTypeA, ChannelTypeB}

// HTStatusChanged is the record schema from event_notification.py's
// HTStatusChanged Bitfield: the pre-firmware-update-era 16-bit status
// layout with no reorder.
var HTStatusChanged = mustBuildHTStatusChanged()

func mustBuildHTStatusChanged() *bitwire.RecordDef {
	pad, err := bitwire.LiteralField(bitwire.IntegerField(1), uint64(0))
	if err != nil {
		panic(err)
	}
	rec, err := bitwire.NewRecord("HTStatusChanged", nil,
		bitwire.F("is_power_on", bitwire.BoolField()),
		bitwire.F("is_in_tx", bitwire.BoolField()),
		bitwire.F("is_sq", bitwire.BoolField()),
		bitwire.F("is_in_rx", bitwire.BoolField()),
		bitwire.F("double_channel", bitwire.IntEnum(2, channelTypeValues)),
		bitwire.F("is_scan", bitwire.BoolField()),
		bitwire.F("is_radio", bitwire.BoolField()),
		bitwire.F("curr_ch_id", bitwire.IntegerField(4)),
		bitwire.F("is_gps_locked", bitwire.BoolField()),
		bitwire.F("is_hfp_connected", bitwire.BoolField()),
		bitwire.F("is_aoc_connected", bitwire.BoolField()),
		bitwire.F("_pad", pad),
	)
	if err != nil {
		panic(err)
	}
	return rec
}

// htStatusChangedExtReorder is the sole bit-reorder example in the entire
// benlink source (event_notification.py: `_reorder = [*range(26, 26+4),
// *range(8, 8+4)]`), carried over verbatim. With P[i] as the destination
// of bit i, the upper nibble of curr_channel_id (old bits 0-3) lands at
// positions 26-29 and its lower nibble (old bits 4-7) at positions 8-11;
// every other bit keeps its relative order in the remaining positions.
var htStatusChangedExtReorder = append(intRange(26, 30), intRange(8, 12)...)

func intRange(lo, hi int) []int {
	out := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}
	return out
}

// HTStatusChangedExt is the record schema from event_notification.py's
// HTStatusChangedExt Bitfield: the 32-bit extended status layout including
// an RSSI scale mapper and the firmware-version reorder permutation.
var HTStatusChangedExt = mustBuildHTStatusChangedExt()

func mustBuildHTStatusChangedExt() *bitwire.RecordDef {
	pad, err := bitwire.LiteralField(bitwire.IntegerField(1), uint64(0))
	if err != nil {
		panic(err)
	}
	pad2, err := bitwire.LiteralField(bitwire.IntegerField(2), uint64(0))
	if err != nil {
		panic(err)
	}
	rssi, err := bitwire.MapField(bitwire.IntegerField(4), scaleForward(100.0/15), scaleBack(100.0/15))
	if err != nil {
		panic(err)
	}

	rec, err := bitwire.NewRecord("HTStatusChangedExt", htStatusChangedExtReorder,
		bitwire.F("curr_channel_id", bitwire.IntegerField(8)),
		bitwire.F("is_power_on", bitwire.BoolField()),
		bitwire.F("is_in_tx", bitwire.BoolField()),
		bitwire.F("is_sq", bitwire.BoolField()),
		bitwire.F("is_in_rx", bitwire.BoolField()),
		bitwire.F("double_channel", bitwire.IntEnum(2, channelTypeValues)),
		bitwire.F("is_scan", bitwire.BoolField()),
		bitwire.F("is_radio", bitwire.BoolField()),
		bitwire.F("is_gps_locked", bitwire.BoolField()),
		bitwire.F("is_hfp_connected", bitwire.BoolField()),
		bitwire.F("is_aoc_connected", bitwire.BoolField()),
		bitwire.F("_pad", pad),
		bitwire.F("rssi", rssi),
		bitwire.F("curr_region", bitwire.IntegerField(6)),
		bitwire.F("_pad2", pad2),
	)
	if err != nil {
		panic(err)
	}
	return rec
}

// scaleForward and scaleBack implement the Scale value mapper used by
// status.py/event_notification.py (`bf_map(bf_int(n), Scale(factor))`): a
// narrow integer scaled to a floating-point physical quantity (RSSI
// percentage, battery voltage) and back.
func scaleForward(factor float64) func(any) (any, error) {
	return func(raw any) (any, error) {
		return float64(raw.(uint64)) * factor, nil
	}
}

func scaleBack(factor float64) func(any) (any, error) {
	return func(value any) (any, error) {
		f, ok := value.(float64)
		if !ok {
			return nil, fmt.Errorf("benshi: expected float64, got %T", value)
		}
		return uint64(math.Round(f / factor)), nil
	}
}

// UnknownEvent is the record schema from event_notification.py's
// UnknownEvent Bitfield: an opaque payload sized to whatever bits remain
// in the enclosing event frame.
var UnknownEvent = mustBuildUnknownEvent()

func mustBuildUnknownEvent() *bitwire.RecordDef {
	dataField, err := bitwire.Dynamic(func(_ *bitwire.SiblingProxy, _ any, remaining int) (any, error) {
		return bitwire.BytesField(remaining / 8), nil
	})
	if err != nil {
		panic(err)
	}
	rec, err := bitwire.NewRecord("UnknownEvent", nil, bitwire.F("data", dataField))
	if err != nil {
		panic(err)
	}
	return rec
}

// DataPacket is the record schema from event_notification.py's DataPacket
// Bitfield: a TNC data fragment whose payload length depends on both a
// sibling flag and the remaining bit budget, and whose trailing
// channel_id field is present only when that flag is set.
var DataPacket = mustBuildDataPacket()

func mustBuildDataPacket() *bitwire.RecordDef {
	dataField, err := bitwire.Dynamic(func(proxy *bitwire.SiblingProxy, _ any, remaining int) (any, error) {
		if proxy.Get("with_channel_id").(bool) {
			return bitwire.BytesField((remaining - 8) / 8), nil
		}
		return bitwire.BytesField(remaining / 8), nil
	})
	if err != nil {
		panic(err)
	}
	channelIDField, err := bitwire.Dynamic(func(proxy *bitwire.SiblingProxy) (any, error) {
		if proxy.Get("with_channel_id").(bool) {
			return bitwire.IntegerField(8), nil
		}
		return nil, nil
	}, bitwire.WithDefault(nil))
	if err != nil {
		panic(err)
	}

	rec, err := bitwire.NewRecord("DataPacket", nil,
		bitwire.F("is_final_packet", bitwire.BoolField()),
		bitwire.F("with_channel_id", bitwire.BoolField()),
		bitwire.F("packet_id", bitwire.IntegerField(6)),
		bitwire.F("data", dataField),
		bitwire.F("channel_id", channelIDField),
	)
	if err != nil {
		panic(err)
	}
	return rec
}

// EventNotificationBody is the record schema from event_notification.py's
// EventNotificationBody Bitfield. Its `event` field is the canonical
// arity-3 dynamic field: decode picks among HTStatusChanged,
// HTStatusChangedExt, DataPacket, and UnknownEvent using both the sibling
// event_type and the number of bits remaining in the frame, while encode
// (per the documented arity-3 asymmetry) infers the branch straight from
// the concrete *bitwire.Value's own RecordDef.
var EventNotificationBody = mustBuildEventNotificationBody()

func mustBuildEventNotificationBody() *bitwire.RecordDef {
	eventField, err := bitwire.Dynamic(func(proxy *bitwire.SiblingProxy, _ any, remaining int) (any, error) {
		switch proxy.Get("event_type").(EventType) {
		case EventTypeHTStatusChanged:
			statusLen, _ := HTStatusChanged.Length()
			extLen, _ := HTStatusChangedExt.Length()
			switch remaining {
			case statusLen:
				return HTStatusChanged, nil
			case extLen:
				return HTStatusChangedExt, nil
			default:
				return nil, fmt.Errorf("benshi: unknown size for HT_STATUS_CHANGED event (%d bits)", remaining)
			}
		case EventTypeDataRxd:
			return bitwire.NestedField(DataPacket, bitwire.WithLength(remaining))
		default:
			return bitwire.NestedField(UnknownEvent, bitwire.WithLength(remaining))
		}
	})
	if err != nil {
		panic(err)
	}

	rec, err := bitwire.NewRecord("EventNotificationBody", nil,
		bitwire.F("event_type", bitwire.IntEnum(8, []EventType{EventTypeUnknown, EventTypeHTStatusChanged, EventTypeDataRxd})),
		bitwire.F("event", eventField),
	)
	if err != nil {
		panic(err)
	}
	return rec
}
