// Package orchestrate composes detection, resolution, and supervision per
// repository and exposes the operations the CLI commands call.
package orchestrate

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/crewhq/crew/pkg/command"
	"github.com/crewhq/crew/pkg/docker"
	"github.com/crewhq/crew/pkg/logview"
	"github.com/crewhq/crew/pkg/supervise"
	"github.com/crewhq/crew/pkg/workspace"
)

// Orchestrator drives lifecycle commands across the workspace. Construct one
// per CLI invocation with the loaded configuration; there is no global state.
type Orchestrator struct {
	Supervisor *supervise.Supervisor

	cfg      *workspace.Config
	resolver *command.Resolver
	log      *logrus.Logger
}

// New wires an orchestrator. selector may be nil for non-interactive use;
// console receives the supervised processes' output (os.Stdout in the CLI).
func New(cfg *workspace.Config, selector command.Selector, log *logrus.Logger, console io.Writer) *Orchestrator {
	return &Orchestrator{
		Supervisor: supervise.New(cfg.LogDir, log, console),
		cfg:        cfg,
		resolver:   command.NewResolver(selector),
		log:        log,
	}
}

// Run executes cmd across the named repositories (all of them when names is
// empty). Parallel batches require every repository to succeed; sequential
// batches continue past individual failures.
func (o *Orchestrator) Run(cmd string, names []string, opts command.Options) error {
	repos, err := workspace.FindRepos(o.cfg.WorkspacePath, names)
	if err != nil {
		return err
	}

	batchLog := o.log.WithFields(logrus.Fields{"batch": uuid.NewString()[:8], "command": cmd})
	batchLog.Infof("running across %d repositories (parallel=%v)", len(repos), opts.Parallel)

	jobs := o.prepareJobs(cmd, repos, opts, batchLog)
	return o.Supervisor.RunBatch(jobs, opts.Parallel)
}

// prepareJobs classifies and resolves each repository. Resolution failures
// are carried on the job so the batch policy decides how to report them.
func (o *Orchestrator) prepareJobs(cmd string, repos []workspace.Repo, opts command.Options, batchLog *logrus.Entry) []supervise.Job {
	jobs := make([]supervise.Job, 0, len(repos))
	for _, repo := range repos {
		cls := docker.Classify(repo.Path, cmd)
		job := supervise.Job{Repo: repo, Command: cmd, Classification: cls}

		override, err := o.cfg.CommandOverride(repo.Name, cmd)
		if err == nil {
			job.Invocation, err = o.resolver.Resolve(repo.Name, cmd, opts, cls, override)
		}
		if err != nil {
			job.Err = err
		} else {
			batchLog.WithField("repo", repo.Name).Debugf("resolved to: %s", job.Invocation)
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// Stop gracefully terminates processes for the named repositories, or every
// process when names is empty. Returns how many were stopped.
func (o *Orchestrator) Stop(names []string) int {
	if len(names) == 0 {
		return o.Supervisor.StopAll()
	}
	return o.Supervisor.StopRepos(names)
}

// Kill tears down processes for the named repositories, or all of them.
func (o *Orchestrator) Kill(names []string, force bool) int {
	if len(names) == 0 {
		return o.Supervisor.KillAll(force)
	}
	return o.Supervisor.KillRepos(names, force)
}

// Status reports the active process records.
func (o *Orchestrator) Status() []supervise.StatusInfo {
	return o.Supervisor.Status()
}

// Logs replays or follows the most recent log for a repository.
func (o *Orchestrator) Logs(ctx context.Context, repo string, follow bool, out io.Writer) error {
	return logview.Show(ctx, o.cfg.LogDir, repo, follow, out)
}
