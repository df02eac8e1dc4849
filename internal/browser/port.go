package browser

import (
	"fmt"
	"net"
)

// CheckPortAvailable fails with ErrPortUnavailable when something is already
// listening on the loopback port. The port is not reserved; a later bind may
// still lose a race, which the launch itself then reports.
func CheckPortAvailable(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("%w: port %d is already in use (%v)", ErrPortUnavailable, port, err)
	}
	ln.Close()
	return nil
}
