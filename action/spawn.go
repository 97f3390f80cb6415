package action

import "os/exec"

// Spawn launches command fully detached from the caller: the window
// manager's event loop must never block waiting on a child it spawned.
// A failure to start is returned for the caller to log; it never
// affects the engine or the event loop.
func Spawn(command string) error {
	cmd := exec.Command(command)
	return cmd.Start()
}
