package cli

import (
	"errors"
	"fmt"
	"os"
)

const lockFile = "browserd.lock"

var errAlreadyRunning = errors.New("another browserd server owns this data directory")

func writePID(file *os.File) {
	file.Truncate(0)
	file.Seek(0, 0)
	fmt.Fprintf(file, "%d\n", os.Getpid())
	file.Sync()
}
