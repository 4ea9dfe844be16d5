package transport

type Protocol string

const (
	TCP Protocol = "tcp"
)

func (p Protocol) Network() string { return string(p) }
