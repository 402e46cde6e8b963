package benshi

import "github.com/benshi-go/bitwire"

// VmControlType mirrors a representative subset of command/vm.py's
// VmControlType enum — the regular firmware-update flow, which is enough
// to exercise VmControlBody's dynamic dispatch end to end.
type VmControlType uint8

const (
	VmControlTypeUpdateStartReq     VmControlType = 1
	VmControlTypeUpdateData         VmControlType = 4
	VmControlTypeUpdateSyncReq      VmControlType = 19
	VmControlTypeUpdateStartDataReq VmControlType = 21
)

// VmuPacketType mirrors a representative subset of command/vm.py's
// VmuPacketType enum.
type VmuPacketType uint8

const (
	VmuPacketTypeUpdateStartCfm VmuPacketType = 2
	VmuPacketTypeUpdateSyncCfm  VmuPacketType = 20
)

// VmControlUpdateSyncReq is command/vm.py's VmControlUpdateSyncReq.
var VmControlUpdateSyncReq = mustRecord("VmControlUpdateSyncReq",
	bitwire.F("md5sum_tail", bitwire.BytesField(4)),
)

// VmControlUpdateStartReq is command/vm.py's VmControlUpdateStartReq — no
// fields at all; firmware update step 2b carries no payload.
var VmControlUpdateStartReq = mustRecord("VmControlUpdateStartReq")

// VmControlUpdateDataStartReq is command/vm.py's VmControlUpdateDataStartReq.
var VmControlUpdateDataStartReq = mustRecord("VmControlUpdateDataStartReq")

// VmControlUpdateData is command/vm.py's VmControlUpdateData: a firmware
// data fragment whose is_final_fragment flag is, unusually, encoded as a
// full byte rather than a single bit (vm.py's bf_bool_byte), and whose
// data payload fills whatever bits remain in the frame.
var VmControlUpdateData = mustBuildVmControlUpdateData()

func mustBuildVmControlUpdateData() *bitwire.RecordDef {
	boolByte, err := bitwire.MapField(bitwire.IntegerField(8),
		func(raw any) (any, error) { return raw.(uint64) != 0, nil },
		func(value any) (any, error) {
			if value.(bool) {
				return uint64(1), nil
			}
			return uint64(0), nil
		},
	)
	if err != nil {
		panic(err)
	}
	dataField, err := bitwire.Dynamic(func(_ *bitwire.SiblingProxy, _ any, remaining int) (any, error) {
		return bitwire.BytesField(remaining / 8), nil
	})
	if err != nil {
		panic(err)
	}
	return mustRecord("VmControlUpdateData",
		bitwire.F("is_final_fragment", boolByte),
		bitwire.F("data", dataField),
	)
}

// VmControlUpdateSyncCfm is command/vm.py's VmControlUpdateSyncCfm (a
// VMU_PACKET reply).
var VmControlUpdateSyncCfm = mustRecord("VmControlUpdateSyncCfm",
	bitwire.F("update_state", bitwire.IntegerField(8)),
	bitwire.F("md5sum_tail", bitwire.BytesField(4)),
	bitwire.F("unknown", bitwire.BytesField(1)),
)

// VmControlUpdateStartCfm is command/vm.py's VmControlUpdateStartCfm.
var VmControlUpdateStartCfm = mustRecord("VmControlUpdateStartCfm",
	bitwire.F("cfm_code", bitwire.IntegerField(8)),
	bitwire.F("unknown", bitwire.BytesField(2)),
)

func mustRecord(name string, specs ...bitwire.FieldSpec) *bitwire.RecordDef {
	rec, err := bitwire.NewRecord(name, nil, specs...)
	if err != nil {
		panic(err)
	}
	return rec
}

// VmControlBody is command/vm.py's VmControlBody: the outer envelope for
// every VM_CONTROL command, dispatching its msg field to one of the
// concrete records above by vm_control_type, sized by the sibling
// n_bytes_payload field — the arity-1 dynamic-dispatch case, since the
// selection needs only already-decoded siblings, not the remaining-bit
// budget. vm_control_type accepts only the four types listed above, so
// the discriminator's raw-byte fallback is never reached.
var VmControlBody = mustBuildVmControlBody()

func mustBuildVmControlBody() *bitwire.RecordDef {
	msgField, err := bitwire.Dynamic(func(proxy *bitwire.SiblingProxy) (any, error) {
		n := int(proxy.Get("n_bytes_payload").(uint64))
		var rec *bitwire.RecordDef
		switch proxy.Get("vm_control_type").(VmControlType) {
		case VmControlTypeUpdateSyncReq:
			rec = VmControlUpdateSyncReq
		case VmControlTypeUpdateStartReq:
			rec = VmControlUpdateStartReq
		case VmControlTypeUpdateStartDataReq:
			rec = VmControlUpdateDataStartReq
		case VmControlTypeUpdateData:
			rec = VmControlUpdateData
		default:
			return bitwire.BytesField(n), nil
		}
		return bitwire.NestedField(rec, bitwire.WithLength(n*8))
	})
	if err != nil {
		panic(err)
	}

	return mustRecord("VmControlBody",
		bitwire.F("vm_control_type", bitwire.IntEnum(8, []VmControlType{
			VmControlTypeUpdateStartReq, VmControlTypeUpdateData,
			VmControlTypeUpdateSyncReq, VmControlTypeUpdateStartDataReq,
		})),
		bitwire.F("n_bytes_payload", bitwire.IntegerField(16)),
		bitwire.F("msg", msgField),
	)
}

// VmuPacket is command/vm.py's VmuPacket: the outer envelope for replies
// arriving on the VMU_PACKET notification characteristic, mirroring
// VmControlBody's dispatch shape over the VmuPacketType enum instead.
var VmuPacket = mustBuildVmuPacket()

func mustBuildVmuPacket() *bitwire.RecordDef {
	msgField, err := bitwire.Dynamic(func(proxy *bitwire.SiblingProxy) (any, error) {
		n := int(proxy.Get("n_bytes_payload").(uint64))
		var rec *bitwire.RecordDef
		switch proxy.Get("vmu_packet_type").(VmuPacketType) {
		case VmuPacketTypeUpdateSyncCfm:
			rec = VmControlUpdateSyncCfm
		case VmuPacketTypeUpdateStartCfm:
			rec = VmControlUpdateStartCfm
		default:
			return bitwire.BytesField(n), nil
		}
		return bitwire.NestedField(rec, bitwire.WithLength(n*8))
	})
	if err != nil {
		panic(err)
	}

	return mustRecord("VmuPacket",
		bitwire.F("vmu_packet_type", bitwire.IntEnum(8, []VmuPacketType{
			VmuPacketTypeUpdateStartCfm, VmuPacketTypeUpdateSyncCfm,
		})),
		bitwire.F("n_bytes_payload", bitwire.IntegerField(16)),
		bitwire.F("msg", msgField),
	)
}
