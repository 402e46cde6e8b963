package benshi

import "github.com/benshi-go/bitwire"

// GaiaFlags mirrors gaiaframe.py's GaiaFlags IntFlag.
type GaiaFlags uint8

const (
	GaiaFlagsNone     GaiaFlags = 0
	GaiaFlagsChecksum GaiaFlags = 1
)

// GaiaFrame is the record schema from gaiaframe.py's GaiaFrame Bitfield: a
// literal-header outer frame carrying a nested MessageFrame sized from a
// sibling byte count, plus an optional trailing checksum selected the same
// way MessageFrame's own checksum field is.
var GaiaFrame = mustBuildGaiaFrame()

func mustBuildGaiaFrame() *bitwire.RecordDef {
	dataField, err := bitwire.Dynamic(func(proxy *bitwire.SiblingProxy) (any, error) {
		nBytesData := proxy.Get("n_bytes_data").(uint64)
		return bitwire.NestedField(MessageFrame, bitwire.WithLength(int(nBytesData)*8+32))
	})
	if err != nil {
		panic(err)
	}

	checksumField, err := bitwire.Dynamic(func(proxy *bitwire.SiblingProxy) (any, error) {
		if proxy.Get("flags").(GaiaFlags)&GaiaFlagsChecksum != 0 {
			return bitwire.IntegerField(8), nil
		}
		return nil, nil
	}, bitwire.WithDefault(nil))
	if err != nil {
		panic(err)
	}

	rec, err := bitwire.NewRecord("GaiaFrame", nil,
		bitwire.F("start", []byte{0xFF}),
		bitwire.F("version", []byte{0x01}),
		bitwire.F("flags", bitwire.IntEnum(8, []GaiaFlags{GaiaFlagsNone, GaiaFlagsChecksum})),
		bitwire.F("n_bytes_data", bitwire.IntegerField(8)),
		bitwire.F("data", dataField),
		bitwire.F("checksum", checksumField),
	)
	if err != nil {
		panic(err)
	}
	return rec
}
