// Package supervise runs a command under WvTest supervision: the child's
// merged stdout and stderr are classified line by line into a session,
// an inactivity watchdog guards against silent hangs, and interrupt or
// terminate signals delivered to the supervisor are forwarded to the
// child's whole process group.
package supervise

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/wvtest/wvrun/pkg/protocol"
	"github.com/wvtest/wvrun/pkg/session"
)

// DefaultTimeout is the default inactivity limit before the watchdog
// terminates the child.
const DefaultTimeout = 100 * time.Second

// maxLineLength bounds a single scanned line of child output.
const maxLineLength = 1 << 20

// Supervisor launches commands and feeds their output to a shared
// session. Run may be called repeatedly; each invocation is an
// independent pass of the full state machine against the same session.
type Supervisor struct {
	session    *session.Session
	classifier *protocol.Classifier
	timeout    time.Duration
	logger     *log.Logger
}

// New creates a supervisor. A non-positive timeout falls back to
// DefaultTimeout.
func New(s *session.Session, c *protocol.Classifier, timeout time.Duration, logger *log.Logger) *Supervisor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Supervisor{session: s, classifier: c, timeout: timeout, logger: logger}
}

// Run supervises one command to completion, mutating the session as a
// side effect. The session is only ever touched from the calling
// goroutine: the reader goroutine hands lines over a channel, and the
// watchdog is a timer case in the same select loop, so signal-driven
// events can never corrupt in-flight state.
//
// A non-nil error reports an infrastructure failure (pipe setup); a
// failing child is not an error here — it becomes a synthetic failing
// check and surfaces through the session tallies.
func (sup *Supervisor) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("supervise: empty command")
	}
	cmdline := strings.Join(argv, " ")
	sup.session.SetImplicitTitle(protocol.NewTesting(cmdline, "wvrun"))

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	setProcessGroup(cmd)

	// One pipe carries both streams so ordering between them is preserved
	// as well as the kernel delivers it.
	pr, pw, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("creating output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, interruptSignals()...)
	defer signal.Stop(sigCh)

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		sup.logger.Error("cannot start command", "command", cmdline, "err", err)
		sup.session.Append(protocol.NewCheck(
			fmt.Sprintf("%s cannot be started: %v", cmdline, err), protocol.ResultFailed))
		return nil
	}
	// The child holds its own copies of the write end.
	_ = pw.Close()

	lines := make(chan string)
	var g errgroup.Group
	g.Go(func() error {
		defer close(lines)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineLength)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		return scanner.Err()
	})

	sup.readLoop(ctx, cmd, cmdline, lines, sigCh)

	if err := g.Wait(); err != nil {
		sup.logger.Warn("reading child output", "command", cmdline, "err", err)
	}
	_ = pr.Close()

	sup.reapChild(cmd, cmdline)
	return nil
}

// readLoop consumes child output until EOF, re-arming the watchdog on
// every line and reacting to watchdog expiry, forwarded signals, and
// context cancellation. All session mutation happens here.
func (sup *Supervisor) readLoop(ctx context.Context, cmd *exec.Cmd, cmdline string,
	lines <-chan string, sigCh <-chan os.Signal) {

	watchdog := time.NewTimer(sup.timeout)
	defer watchdog.Stop()
	expired := false

	for {
		select {
		case raw, ok := <-lines:
			if !ok {
				// Stream end disarms the watchdog unconditionally.
				return
			}
			if !watchdog.Stop() {
				select {
				case <-watchdog.C:
				default:
				}
			}
			watchdog.Reset(sup.timeout)
			expired = false
			sup.session.Append(sup.classifier.Classify(raw))

		case <-watchdog.C:
			if expired {
				continue
			}
			expired = true
			sup.logger.Warn("watchdog expired", "command", cmdline, "timeout", sup.timeout)
			sup.session.Append(protocol.NewCheck(
				fmt.Sprintf("%s Alarm timed out!  no test output for %d seconds",
					cmdline, int(sup.timeout.Seconds())),
				protocol.ResultFailed))
			// Killing the group ends the stream; reading continues
			// until the pipe actually drains.
			if err := signalProcessGroup(cmd, terminateSignal()); err != nil {
				sup.logger.Warn("signaling process group", "err", err)
			}

		case sig := <-sigCh:
			sup.logger.Debug("forwarding signal to child group", "signal", sig)
			if err := signalProcessGroup(cmd, sig); err != nil {
				sup.logger.Warn("forwarding signal", "err", err)
			}

		case <-ctx.Done():
			if err := signalProcessGroup(cmd, terminateSignal()); err != nil {
				sup.logger.Warn("signaling process group", "err", err)
			}
			// Keep draining; EOF follows the child's death.
			ctx = context.Background()
		}
	}
}

// reapChild waits for the child and translates an abnormal end into a
// synthetic failing check. A zero exit adds nothing.
func (sup *Supervisor) reapChild(cmd *exec.Cmd, cmdline string) {
	err := cmd.Wait()
	if err == nil {
		return
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		sup.logger.Error("waiting for command", "command", cmdline, "err", err)
		sup.session.Append(protocol.NewCheck(
			fmt.Sprintf("%s failed: %v", cmdline, err), protocol.ResultFailed))
		return
	}
	code, sig := exitStatus(exitErr)
	if sig != 0 {
		sup.session.Append(protocol.NewCheck(
			fmt.Sprintf("%s killed by signal %d", cmdline, sig), protocol.ResultFailed))
		return
	}
	sup.session.Append(protocol.NewCheck(
		fmt.Sprintf("%s returned exit code %d", cmdline, code), protocol.ResultFailed))
}
