//go:build !unix

package supervise

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup is a no-op on non-Unix platforms.
func setProcessGroup(cmd *exec.Cmd) {
}

// signalProcessGroup signals the child directly; there is no process
// group support on this platform.
func signalProcessGroup(cmd *exec.Cmd, sig os.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(sig)
}

// exitStatus reports the exit code; signal termination is not observable
// on non-Unix platforms.
func exitStatus(err *exec.ExitError) (code int, sig syscall.Signal) {
	return err.ExitCode(), 0
}

// interruptSignals lists the signals forwarded to the child.
func interruptSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// terminateSignal is what the watchdog sends to a silent child.
func terminateSignal() os.Signal {
	return os.Kill
}
