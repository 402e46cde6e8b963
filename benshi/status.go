package benshi

import (
	"fmt"

	"github.com/benshi-go/bitwire"
)

// ReplyStatus mirrors the ReplyStatus enum referenced throughout the
// command layer (messageframeOld.py's ReplyStatus; the mature iteration
// factors it into a shared common module). Only SUCCESS participates in
// this package's dynamic dispatch, so the rest of the enum is carried for
// completeness rather than exercised.
type ReplyStatus uint8

const (
	ReplyStatusSuccess               ReplyStatus = 0
	ReplyStatusNotSupported          ReplyStatus = 1
	ReplyStatusNotAuthenticated      ReplyStatus = 2
	ReplyStatusInsufficientResources ReplyStatus = 3
	ReplyStatusAuthenticating        ReplyStatus = 4
	ReplyStatusInvalidParameter      ReplyStatus = 5
	ReplyStatusIncorrectState        ReplyStatus = 6
	ReplyStatusInProgress            ReplyStatus = 7
)

var replyStatusValues = []ReplyStatus{
	ReplyStatusSuccess, ReplyStatusNotSupported, ReplyStatusNotAuthenticated,
	ReplyStatusInsufficientResources, ReplyStatusAuthenticating,
	ReplyStatusInvalidParameter, ReplyStatusIncorrectState, ReplyStatusInProgress,
}

// ReadStatusType mirrors status.py's ReadStatusType enum.
type ReadStatusType uint16

const (
	ReadStatusTypeUnknown                 ReadStatusType = 0
	ReadStatusTypeBatteryLevel             ReadStatusType = 1
	ReadStatusTypeBatteryVoltage           ReadStatusType = 2
	ReadStatusTypeRCBatteryLevel           ReadStatusType = 3
	ReadStatusTypeBatteryLevelAsPercentage ReadStatusType = 4
)

var readStatusTypeValues = []ReadStatusType{
	ReadStatusTypeUnknown, ReadStatusTypeBatteryLevel, ReadStatusTypeBatteryVoltage,
	ReadStatusTypeRCBatteryLevel, ReadStatusTypeBatteryLevelAsPercentage,
}

// BatteryVoltageStatus is status.py's BatteryVoltageStatus: a 16-bit raw
// reading scaled to volts by a Scale(1/1000) mapper.
var BatteryVoltageStatus = mustBuildBatteryVoltageStatus()

func mustBuildBatteryVoltageStatus() *bitwire.RecordDef {
	voltage, err := bitwire.MapField(bitwire.IntegerField(16), scaleForward(1.0/1000), scaleBack(1.0/1000))
	if err != nil {
		panic(err)
	}
	return mustRecord("BatteryVoltageStatus", bitwire.F("voltage", voltage))
}

// BatteryLevelStatus is status.py's BatteryLevelStatus.
var BatteryLevelStatus = mustRecord("BatteryLevelStatus", bitwire.F("level", bitwire.IntegerField(8)))

// BatteryLevelPercentageStatus is status.py's BatteryLevelPercentageStatus.
var BatteryLevelPercentageStatus = mustRecord("BatteryLevelPercentageStatus", bitwire.F("percentage", bitwire.IntegerField(8)))

// RCBatteryLevelStatus is status.py's RCBatteryLevelStatus.
var RCBatteryLevelStatus = mustRecord("RCBatteryLevelStatus", bitwire.F("level", bitwire.IntegerField(8)))

// Status is status.py's Status Bitfield: a status_type discriminant
// selecting among the four battery status payloads above, the arity-1
// dynamic-dispatch case (the branch depends only on an already-decoded
// sibling, not on the remaining bit budget).
var Status = mustBuildStatus()

func mustBuildStatus() *bitwire.RecordDef {
	valueField, err := bitwire.Dynamic(func(proxy *bitwire.SiblingProxy) (any, error) {
		switch proxy.Get("status_type").(ReadStatusType) {
		case ReadStatusTypeBatteryVoltage:
			return BatteryVoltageStatus, nil
		case ReadStatusTypeBatteryLevel:
			return BatteryLevelStatus, nil
		case ReadStatusTypeBatteryLevelAsPercentage:
			return BatteryLevelPercentageStatus, nil
		case ReadStatusTypeRCBatteryLevel:
			return RCBatteryLevelStatus, nil
		default:
			return nil, fmt.Errorf("benshi: unknown radio status type %v", proxy.Get("status_type"))
		}
	})
	if err != nil {
		panic(err)
	}

	return mustRecord("Status",
		bitwire.F("status_type", bitwire.IntEnum(16, readStatusTypeValues)),
		bitwire.F("value", valueField),
	)
}

// ReadStatusReplyBody is status.py's ReadStatusReplyBody: its status field
// is absent (None) unless reply_status is SUCCESS, and otherwise fills
// whatever bits remain in the frame with a nested Status record — the
// arity-3 dynamic-dispatch case, since the branch depends on the
// remaining-bit budget rather than just a sibling value.
var ReadStatusReplyBody = mustBuildReadStatusReplyBody()

func mustBuildReadStatusReplyBody() *bitwire.RecordDef {
	statusField, err := bitwire.Dynamic(func(proxy *bitwire.SiblingProxy, _ any, remaining int) (any, error) {
		if proxy.Get("reply_status").(ReplyStatus) != ReplyStatusSuccess {
			return nil, nil
		}
		return bitwire.NestedField(Status, bitwire.WithLength(remaining))
	}, bitwire.WithDefault(nil))
	if err != nil {
		panic(err)
	}

	return mustRecord("ReadStatusReplyBody",
		bitwire.F("reply_status", bitwire.IntEnum(8, replyStatusValues)),
		bitwire.F("status", statusField),
	)
}

// ReadStatusBody is status.py's ReadStatusBody: the request counterpart,
// carrying only the status type being requested.
var ReadStatusBody = mustRecord("ReadStatusBody", bitwire.F("status_type", bitwire.IntEnum(16, readStatusTypeValues)))
