package herrs

// Kind classifies a transport-level failure. Every Kind has a fixed
// retryability: a Retry middleware consults Retryable(), never the
// message text.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNetwork
	KindTimeout
	KindTLS
	KindProtocol
	KindDNS
	KindCancelled
	KindHTTPStatus
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NetworkError"
	case KindTimeout:
		return "Timeout"
	case KindTLS:
		return "TlsError"
	case KindProtocol:
		return "ProtocolError"
	case KindDNS:
		return "DnsError"
	case KindCancelled:
		return "Cancelled"
	case KindHTTPStatus:
		return "HttpStatusError"
	default:
		return "Unknown"
	}
}

// Retryable reports whether an error of this Kind is safe to retry.
// NetworkError, Timeout, DnsError: retryable.
// TlsError, ProtocolError, HttpStatusError: not retryable.
// Cancelled: never retried, regardless of caller override.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindDNS:
		return true
	default:
		return false
	}
}
