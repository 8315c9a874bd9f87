package cli

import (
	"os"

	"github.com/wvtest/wvrun/internal/logging"
	"github.com/wvtest/wvrun/pkg/junit"
	"github.com/wvtest/wvrun/pkg/protocol"
	"github.com/wvtest/wvrun/pkg/render"
	"github.com/wvtest/wvrun/pkg/session"
	"github.com/wvtest/wvrun/pkg/testlog"
)

// pipeline bundles the collaborators both subcommands share: the
// classifier, the session with its emitters, and the optional JUnit
// collector.
type pipeline struct {
	classifier *protocol.Classifier
	sess       *session.Session
	junitOut   *junit.Writer
	junitPath  string
}

// newPipeline merges flags over the project config and builds the run
// pipeline writing to stdout.
func newPipeline() (*pipeline, error) {
	junitPath := flagJUnit
	if junitPath == "" {
		junitPath = cfg.JUnit
	}
	logDir := flagLogDir
	if logDir == "" {
		logDir = cfg.LogDir
	}
	prefix := flagPrefix
	if prefix == "" {
		prefix = cfg.Prefix
	}

	classifier, err := protocol.NewClassifier(prefix)
	if err != nil {
		return nil, err
	}

	pal := render.NewPalette(os.Stdout, flagNoColor)
	emitters := []session.Emitter{render.NewConsole(os.Stdout, pal, verbosity())}

	if logDir != "" {
		dir, err := testlog.NewDir(logDir, logging.New("testlog"))
		if err != nil {
			return nil, err
		}
		emitters = append(emitters, dir)
	}

	p := &pipeline{classifier: classifier, junitPath: junitPath}
	var opts []session.Option
	if junitPath != "" {
		p.junitOut = junit.NewWriter("wvtest")
		opts = append(opts, session.WithRecorder(p.junitOut))
	}
	p.sess = session.New(emitters, opts...)
	return p, nil
}

// verbosity resolves the active level: flags beat the config file.
func verbosity() render.Verbosity {
	switch {
	case flagVerbose:
		return render.Verbose
	case flagSummary:
		return render.Summary
	}
	switch cfg.Verbosity {
	case "verbose":
		return render.Verbose
	case "summary":
		return render.Summary
	default:
		return render.Normal
	}
}

// finish closes out the run: writes the JUnit report if requested and
// records overall failure for the process exit code.
func (p *pipeline) finish() error {
	p.sess.Done()
	if p.sess.Failed() {
		exitFailed = true
	}
	if p.junitOut != nil {
		if err := p.junitOut.WriteFile(p.junitPath); err != nil {
			return err
		}
	}
	return nil
}
