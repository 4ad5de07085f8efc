package se05x

import (
	"errors"

	"github.com/cmuellner/libifdse/pkg/atr"
	"github.com/cmuellner/libifdse/pkg/block"
	"github.com/cmuellner/libifdse/pkg/transport"
)

// Status is one of the IFD exit codes surfaced to the PC/SC host.
type Status int

const (
	IFDSuccess Status = iota
	IFDNoSuchDevice
	IFDCommunicationError
	IFDErrorPowerAction
	IFDNotSupported
	IFDErrorTag
)

func (s Status) String() string {
	switch s {
	case IFDSuccess:
		return "IFD_SUCCESS"
	case IFDNoSuchDevice:
		return "IFD_NO_SUCH_DEVICE"
	case IFDCommunicationError:
		return "IFD_COMMUNICATION_ERROR"
	case IFDErrorPowerAction:
		return "IFD_ERROR_POWER_ACTION"
	case IFDNotSupported:
		return "IFD_NOT_SUPPORTED"
	case IFDErrorTag:
		return "IFD_ERROR_TAG"
	default:
		return "IFD_UNKNOWN"
	}
}

// ToStatus maps an error returned by the session facade to the IFD exit
// code the host middleware expects. err == nil maps to IFDSuccess.
func ToStatus(err error) Status {
	switch {
	case err == nil:
		return IFDSuccess
	case errors.Is(err, ErrConfigParse):
		return IFDNoSuchDevice
	case errors.Is(err, ErrPowerAction):
		return IFDErrorPowerAction
	case errors.Is(err, ErrNotSupported):
		return IFDNotSupported
	case errors.Is(err, atr.ErrHistoricalBytesTooLong), errors.Is(err, block.ErrBufferTooSmall):
		return IFDErrorTag
	case errors.Is(err, transport.ErrNotReady), errors.Is(err, transport.ErrTimeout):
		return IFDCommunicationError
	case errors.Is(err, block.ErrCRCMismatch),
		errors.Is(err, block.ErrUnexpectedPCB),
		errors.Is(err, block.ErrWrongTokenNR),
		errors.Is(err, block.ErrUnsupportedSReq),
		errors.Is(err, block.ErrRetransmitExhausted),
		errors.Is(err, block.ErrPartialTransfer),
		errors.Is(err, block.ErrIterationLimitExceeded):
		return IFDCommunicationError
	default:
		return IFDCommunicationError
	}
}
