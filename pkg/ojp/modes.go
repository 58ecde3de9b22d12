package ojp

import "github.com/ojpilot/ojpilot/pkg/util"

// TransportMode is the tool-facing mode enum. It deliberately collapses the
// protocol's finer-grained vocabulary into the handful of distinctions a
// journey answer needs.
type TransportMode string

const (
	ModeTrain TransportMode = "train"
	ModeBus   TransportMode = "bus"
	ModeTram  TransportMode = "tram"
	ModeWalk  TransportMode = "walk"
	ModeCycle TransportMode = "cycle"
	ModeCar   TransportMode = "car"
)

// IsPublicTransport reports whether the mode is a scheduled service.
func (m TransportMode) IsPublicTransport() bool {
	return m == ModeTrain || m == ModeBus || m == ModeTram
}

// ptModeTable maps the protocol's PtMode codes onto the mode enum. Codes
// absent from the table (water, cableway, funicular, taxi, ...) are not
// guessed at; the affected entry fails with an UnknownModeError instead.
var ptModeTable = map[string]TransportMode{
	"rail":        ModeTrain,
	"metro":       ModeTrain,
	"underground": ModeTrain,
	"bus":         ModeBus,
	"coach":       ModeBus,
	"trolleyBus":  ModeBus,
	"tram":        ModeTram,
}

// individualModeTable maps continuous-leg and transfer mode codes.
var individualModeTable = map[string]TransportMode{
	"walk":           ModeWalk,
	"foot":           ModeWalk,
	"cycle":          ModeCycle,
	"self-drive-car": ModeCar,
	"car":            ModeCar,
}

func modeFromPtCode(code string) (TransportMode, error) {
	mode, found := ptModeTable[code]
	if !found {
		return "", NewUnknownModeError("Service/Mode/PtMode", code)
	}

	return mode, nil
}

// modeForService resolves a timed leg's mode. PtMode is authoritative, but
// when a producer omits it the submode element still names the family.
func modeForService(mode modeElement) (TransportMode, error) {
	resolved, err := modeFromPtCode(mode.PtMode)
	if err == nil {
		return resolved, nil
	}

	if mode.PtMode == "" {
		switch {
		case mode.RailSubmode != "":
			return ModeTrain, nil
		case mode.BusSubmode != "":
			return ModeBus, nil
		case mode.TramSubmode != "":
			return ModeTram, nil
		}
	}

	return "", err
}

// modeFromTransferType resolves a transfer leg's mode. Transfers without an
// explicit type are walks, which matches how the protocol uses the element.
func modeFromTransferType(transferType string) (TransportMode, error) {
	if transferType == "" {
		return ModeWalk, nil
	}

	mode, found := individualModeTable[transferType]
	if !found {
		return "", NewUnknownModeError("TransferLeg/TransferType", transferType)
	}

	return mode, nil
}

// modeFromIndividualCode resolves a continuous leg's mode, defaulting to
// walking when the service section names none.
func modeFromIndividualCode(code string) (TransportMode, error) {
	if code == "" {
		return ModeWalk, nil
	}

	mode, found := individualModeTable[code]
	if !found {
		return "", NewUnknownModeError("ContinuousLeg/Service", code)
	}

	return mode, nil
}

// requestModeTable maps the mode names accepted from tool callers. The
// aliases cover the gerund forms assistants tend to send.
var requestModeTable = map[string]TransportMode{
	"train":   ModeTrain,
	"bus":     ModeBus,
	"tram":    ModeTram,
	"walk":    ModeWalk,
	"walking": ModeWalk,
	"cycle":   ModeCycle,
	"cycling": ModeCycle,
	"car":     ModeCar,
}

// ModeEverything is the caller-side wildcard that disables mode filtering.
const ModeEverything = "public_transport"

// ParseModeParam converts caller-supplied mode names into TransportModes.
// An empty list or one containing the wildcard means no restriction, which
// is reported as a nil slice.
func ParseModeParam(values []string) ([]TransportMode, error) {
	if len(values) == 0 || util.ContainsString(values, ModeEverything) {
		return nil, nil
	}

	var modes []TransportMode
	for _, value := range values {
		mode, found := requestModeTable[value]
		if !found {
			return nil, NewValidationError("transport_modes", "unsupported mode %q", value)
		}

		if !containsMode(modes, mode) {
			modes = append(modes, mode)
		}
	}

	return modes, nil
}

// ptFilterCode returns the PtMode code used to request a mode in a trip
// filter. Individual modes have no PtMode code and are excluded from
// filters entirely.
func ptFilterCode(mode TransportMode) (string, bool) {
	switch mode {
	case ModeTrain:
		return "rail", true
	case ModeBus:
		return "bus", true
	case ModeTram:
		return "tram", true
	default:
		return "", false
	}
}

func containsMode(modes []TransportMode, mode TransportMode) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}

	return false
}
