package protocol

// Side represents the order side (Buy/Sell).
type Side int8

const (
	SideBuy  Side = 1
	SideSell Side = 2
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	}
	return "unknown"
}

// MatchingState represents the trading mode of a security.
type MatchingState uint8

const (
	StateContinuous MatchingState = 0
	StateAuction    MatchingState = 1
)

func (s MatchingState) String() string {
	switch s {
	case StateContinuous:
		return "continuous"
	case StateAuction:
		return "auction"
	}
	return "unknown"
}

// OrderEntryType identifies whether an enter-order request creates a new
// order or updates an existing one.
type OrderEntryType uint8

const (
	NewOrder    OrderEntryType = 0
	UpdateOrder OrderEntryType = 1
)

// RequestType defines the type of the request (using uint8 for memory
// alignment and performance).
type RequestType uint8

const (
	ReqUnknown             RequestType = 0
	ReqEnterOrder          RequestType = 1
	ReqDeleteOrder         RequestType = 2
	ReqChangeMatchingState RequestType = 3
)
