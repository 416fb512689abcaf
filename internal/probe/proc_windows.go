//go:build windows

package probe

import "os/exec"

// On Windows exec.CommandContext's default Kill is the best we can do
// portably; WaitDelay still bounds the wait on inherited pipes.
func setupProcessGroup(cmd *exec.Cmd) {}
