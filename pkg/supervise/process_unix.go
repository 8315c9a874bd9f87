//go:build unix

package supervise

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup configures the command to run in its own process group,
// so signals reach the child and all of its descendants together.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalProcessGroup sends a signal to the child's entire process group,
// falling back to signaling just the child when the group is gone.
func signalProcessGroup(cmd *exec.Cmd, sig os.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Signal(sig)
	}
	sigVal, ok := sig.(syscall.Signal)
	if !ok {
		return cmd.Process.Signal(sig)
	}
	return syscall.Kill(-pgid, sigVal)
}

// exitStatus decodes how the child ended: (code, 0) for a normal exit,
// (0, sig) when the child was terminated by a signal.
func exitStatus(err *exec.ExitError) (code int, sig syscall.Signal) {
	ws, ok := err.Sys().(syscall.WaitStatus)
	if !ok {
		return 1, 0
	}
	if ws.Signaled() {
		return 0, ws.Signal()
	}
	return ws.ExitStatus(), 0
}

// interruptSignals lists the signals forwarded to the child's group.
func interruptSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// terminateSignal is what the watchdog sends to a silent child.
func terminateSignal() os.Signal {
	return syscall.SIGTERM
}
