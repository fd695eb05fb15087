package supervise

import (
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// defaultComposeFile is assumed when a hybrid script did not name one.
const defaultComposeFile = "docker-compose.yml"

// Stop gracefully terminates the process registered under (repo, cmd).
// Returns false when no such process is registered.
//
// Strategy per record:
//   - Compose-managed: `compose -f <file> stop` in the repo directory.
//   - Hybrid: compose stop for the detected services, then SIGTERM to the
//     npm child. Both are attempted; neither failure blocks the other.
//   - Plain: SIGTERM, wait the term window, SIGKILL if still alive.
//
// The record is removed in every case, including internal errors.
func (s *Supervisor) Stop(repo, cmd string) bool {
	rec, ok := s.lookup(repo, cmd)
	if !ok {
		return false
	}
	s.stopRecord(rec)
	return true
}

// StopAll stops every registered process and returns how many were stopped.
func (s *Supervisor) StopAll() int {
	recs := s.snapshot()
	for _, rec := range recs {
		s.stopRecord(rec)
	}
	return len(recs)
}

// StopRepos stops all processes belonging to the named repositories.
func (s *Supervisor) StopRepos(names []string) int {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	stopped := 0
	for _, rec := range s.snapshot() {
		if wanted[rec.Repo] {
			s.stopRecord(rec)
			stopped++
		}
	}
	return stopped
}

func (s *Supervisor) stopRecord(rec *Record) {
	defer s.remove(rec.Repo, rec.Command)
	flog := s.log.WithFields(logrus.Fields{"repo": rec.Repo, "command": rec.Command})

	cls := rec.Classification
	switch {
	case cls.ComposeManaged:
		if err := s.execCompose(s.repoDir(rec), "-f", cls.ComposeFile, "stop"); err != nil {
			flog.Warnf("compose stop failed: %v", err)
		}
	case cls.NPMUsesDocker:
		args := append(hybridFileArgs(cls.ScriptComposeFile), "stop")
		args = append(args, cls.Services...)
		if err := s.execCompose(s.repoDir(rec), args...); err != nil {
			flog.Warnf("compose stop failed: %v", err)
		}
		// The npm process itself still needs a signal; the compose outcome
		// doesn't change that.
		s.signal(rec, syscall.SIGTERM, flog)
	default:
		s.signal(rec, syscall.SIGTERM, flog)
		select {
		case <-rec.done:
		case <-time.After(s.TermWindow):
			flog.Warn("still running after graceful window, sending SIGKILL")
			s.signal(rec, syscall.SIGKILL, flog)
		}
	}
}

// Kill tears down the process registered under (repo, cmd) aggressively.
// Returns false when no such process is registered.
func (s *Supervisor) Kill(repo, cmd string, force bool) bool {
	rec, ok := s.lookup(repo, cmd)
	if !ok {
		return false
	}
	s.killRecord(rec, force)
	return true
}

// KillAll tears down every registered process and returns how many.
func (s *Supervisor) KillAll(force bool) int {
	recs := s.snapshot()
	for _, rec := range recs {
		s.killRecord(rec, force)
	}
	return len(recs)
}

// KillRepos tears down all processes belonging to the named repositories.
func (s *Supervisor) KillRepos(names []string, force bool) int {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	killed := 0
	for _, rec := range s.snapshot() {
		if wanted[rec.Repo] {
			s.killRecord(rec, force)
			killed++
		}
	}
	return killed
}

func (s *Supervisor) killRecord(rec *Record, force bool) {
	defer s.remove(rec.Repo, rec.Command)
	flog := s.log.WithFields(logrus.Fields{"repo": rec.Repo, "command": rec.Command})

	cls := rec.Classification
	switch {
	case cls.ComposeManaged:
		args := []string{"-f", cls.ComposeFile, "down"}
		if force {
			args = append(args, "--remove-orphans", "--volumes")
		}
		if err := s.execCompose(s.repoDir(rec), args...); err != nil {
			flog.Warnf("compose down failed: %v", err)
		}
	case cls.NPMUsesDocker:
		fileArgs := hybridFileArgs(cls.ScriptComposeFile)
		if len(cls.Services) > 0 {
			// Target only the services the script started: stop, then remove.
			stopArgs := append(append([]string{}, fileArgs...), "stop")
			stopArgs = append(stopArgs, cls.Services...)
			if err := s.execCompose(s.repoDir(rec), stopArgs...); err != nil {
				flog.Warnf("compose stop failed: %v", err)
			}
			rmArgs := append(append([]string{}, fileArgs...), "rm", "-f")
			rmArgs = append(rmArgs, cls.Services...)
			if err := s.execCompose(s.repoDir(rec), rmArgs...); err != nil {
				flog.Warnf("compose rm failed: %v", err)
			}
		} else {
			args := append(append([]string{}, fileArgs...), "down")
			if force {
				args = append(args, "--remove-orphans", "--volumes")
			}
			if err := s.execCompose(s.repoDir(rec), args...); err != nil {
				flog.Warnf("compose down failed: %v", err)
			}
		}
		s.signal(rec, killSignal(force), flog)
	default:
		s.signal(rec, killSignal(force), flog)
	}
}

func killSignal(force bool) syscall.Signal {
	if force {
		return syscall.SIGKILL
	}
	return syscall.SIGTERM
}

func hybridFileArgs(file string) []string {
	if file == "" {
		file = defaultComposeFile
	}
	return []string{"-f", file}
}

func (s *Supervisor) signal(rec *Record, sig syscall.Signal, flog *logrus.Entry) {
	select {
	case <-rec.done:
		return // already exited
	default:
	}
	if err := rec.cmd.Process.Signal(sig); err != nil {
		flog.Debugf("signal %v failed: %v", sig, err)
	}
}

func (s *Supervisor) repoDir(rec *Record) string {
	return rec.cmd.Dir
}

// runComposeCommand is the production execCompose: it shells out to the
// compose binary in dir and waits. Output goes to the CLI log, not the
// process log file, since the supervised child did not produce it.
func (s *Supervisor) runComposeCommand(dir string, args ...string) error {
	cmd := exec.Command("compose", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		s.log.Debugf("compose %v: %s", args, out)
	}
	if err != nil {
		return fmt.Errorf("compose %v: %w", args, err)
	}
	return nil
}
