package model

type ConnectionStatus string

const (
	ConnectionStatusConnecting   ConnectionStatus = "connecting"
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
	ConnectionStatusFailed       ConnectionStatus = "failed"
)

// IsTerminal reports whether no further transitions are allowed.
func (s ConnectionStatus) IsTerminal() bool {
	return s == ConnectionStatusFailed
}

// Summary collapses the status into the two values reported to clients.
func (s ConnectionStatus) Summary() ConnectionStatus {
	if s == ConnectionStatusConnected {
		return ConnectionStatusConnected
	}

	return ConnectionStatusDisconnected
}
