// Package supervise spawns, tracks, and tears down the operating-system
// processes behind lifecycle commands. It owns the in-memory registry of
// running processes; nothing here survives a CLI restart.
package supervise

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/crewhq/crew/pkg/command"
	"github.com/crewhq/crew/pkg/docker"
	"github.com/crewhq/crew/pkg/workspace"
)

// Default timing windows. Fields on Supervisor so tests can shrink them.
const (
	// DefaultGraceWindow is how long a long-running command gets before its
	// start is considered successful.
	DefaultGraceWindow = 1 * time.Second
	// DefaultTermWindow is how long a SIGTERM'd process gets before SIGKILL.
	DefaultTermWindow = 2 * time.Second
)

type recordKey struct {
	repo    string
	command string
}

// Record tracks one supervised process. The classification copy is what the
// termination strategies consult later.
type Record struct {
	Repo           string
	Command        string
	PID            int
	StartedAt      time.Time
	LogPath        string
	Classification docker.Classification

	cmd     *exec.Cmd
	done    chan struct{} // closed after Wait returns
	waitErr error         // valid once done is closed
}

// Supervisor is safe for concurrent use; the registry is guarded by mu.
type Supervisor struct {
	logDir    string
	log       *logrus.Logger
	console   io.Writer
	consoleMu sync.Mutex // console is shared by every stream goroutine

	// GraceWindow and TermWindow default to the package constants.
	GraceWindow time.Duration
	TermWindow  time.Duration

	// execCompose runs a compose teardown command in dir. Swappable in tests.
	execCompose func(dir string, args ...string) error

	mu      sync.Mutex
	records map[recordKey]*Record
}

// New builds a supervisor writing log files under logDir and echoing child
// output to console (pass os.Stdout for interactive use).
func New(logDir string, log *logrus.Logger, console io.Writer) *Supervisor {
	s := &Supervisor{
		logDir:      logDir,
		log:         log,
		console:     console,
		GraceWindow: DefaultGraceWindow,
		TermWindow:  DefaultTermWindow,
		records:     make(map[recordKey]*Record),
	}
	s.execCompose = s.runComposeCommand
	return s
}

// Job is one prepared unit of batch work. A façade-side resolution failure is
// carried in Err so sequential batches can report it in order.
type Job struct {
	Repo           workspace.Repo
	Command        string
	Invocation     command.Invocation
	Classification docker.Classification
	Err            error
}

// Start spawns inv with the repository as working directory, streams tagged
// output into a fresh log file, and registers the process.
//
// Bounded commands block until the child exits and return its failure, if
// any. Long-running commands return nil once the grace window has elapsed;
// the process stays registered and keeps streaming in the background.
func (s *Supervisor) Start(repo workspace.Repo, cmdName string, inv command.Invocation, cls docker.Classification) error {
	if len(inv) == 0 {
		return fmt.Errorf("empty invocation for %s %s", repo.Name, cmdName)
	}
	if err := os.MkdirAll(s.logDir, 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	started := time.Now()
	logPath := filepath.Join(s.logDir, fmt.Sprintf("%s-%s-%d.log", repo.Name, cmdName, started.UnixMilli()))
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}

	cmd := exec.Command(inv.Program(), inv.Args()...)
	cmd.Dir = repo.Path
	// Own process group: long-running dev servers must not die with the CLI's
	// terminal session.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		logFile.Close()
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		logFile.Close()
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return fmt.Errorf("starting %s for %s: %w", inv, repo.Name, err)
	}

	rec := &Record{
		Repo:           repo.Name,
		Command:        cmdName,
		PID:            cmd.Process.Pid,
		StartedAt:      started,
		LogPath:        logPath,
		Classification: cls,
		cmd:            cmd,
		done:           make(chan struct{}),
	}
	s.register(rec)

	var logMu sync.Mutex
	var streams sync.WaitGroup
	streams.Add(2)
	go s.streamOutput(&streams, stdout, "STDOUT", rec, logFile, &logMu)
	go s.streamOutput(&streams, stderr, "STDERR", rec, logFile, &logMu)

	go func() {
		streams.Wait()
		rec.waitErr = cmd.Wait()
		logFile.Close()
		// Remove before signaling done so a caller returning from Start never
		// observes a stale record.
		s.remove(rec.Repo, rec.Command)
		close(rec.done)
		if rec.waitErr != nil {
			s.log.WithFields(logrus.Fields{"repo": rec.Repo, "command": rec.Command}).
				Warnf("process exited: %v", rec.waitErr)
		}
	}()

	if command.IsLongRunning(cmdName) {
		// Resolve after the grace window no matter what; a late crash is
		// visible through status and the log file, not through this call.
		time.Sleep(s.GraceWindow)
		return nil
	}

	<-rec.done
	if rec.waitErr != nil {
		return fmt.Errorf("%s %s: %w", repo.Name, cmdName, rec.waitErr)
	}
	return nil
}

// RunBatch executes jobs in parallel or sequentially.
//
// Parallel mode fails when any repository fails and reports one aggregate
// error. Sequential mode is best effort: each failure is logged and the batch
// moves on to the next repository.
func (s *Supervisor) RunBatch(jobs []Job, parallel bool) error {
	if parallel {
		var failed int
		var mu sync.Mutex
		var g errgroup.Group
		for _, job := range jobs {
			job := job
			g.Go(func() error {
				if err := s.runJob(job); err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("%d of %d repositories failed (first failure: %w)", failed, len(jobs), err)
		}
		return nil
	}

	for _, job := range jobs {
		if err := s.runJob(job); err != nil {
			s.log.WithField("repo", job.Repo.Name).Errorf("%s failed: %v", job.Command, err)
			continue
		}
	}
	return nil
}

func (s *Supervisor) runJob(job Job) error {
	if job.Err != nil {
		return job.Err
	}
	return s.Start(job.Repo, job.Command, job.Invocation, job.Classification)
}

// streamOutput copies one stream into the log file and console, line by
// line. A bufio.Reader rather than a Scanner: a line of any length must be
// consumed, since an undrained pipe blocks the child and a bounded Start
// would never see it exit.
func (s *Supervisor) streamOutput(wg *sync.WaitGroup, r io.Reader, tag string, rec *Record, logFile *os.File, logMu *sync.Mutex) {
	defer wg.Done()
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\n")
		if err == nil || line != "" {
			logMu.Lock()
			fmt.Fprintf(logFile, "[%s] %s\n", tag, line)
			logMu.Unlock()
			if s.console != nil {
				s.consoleMu.Lock()
				fmt.Fprintf(s.console, "[%s] %s\n", rec.Repo, line)
				s.consoleMu.Unlock()
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *Supervisor) register(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey{rec.Repo, rec.Command}] = rec
}

func (s *Supervisor) remove(repo, cmd string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, recordKey{repo, cmd})
}

func (s *Supervisor) lookup(repo, cmd string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordKey{repo, cmd}]
	return rec, ok
}

// snapshot returns the active records sorted by repository then command.
func (s *Supervisor) snapshot() []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Repo != recs[j].Repo {
			return recs[i].Repo < recs[j].Repo
		}
		return recs[i].Command < recs[j].Command
	})
	return recs
}
