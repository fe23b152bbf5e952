package fixer

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/scan-io-git/lintfix/internal/config"
	"github.com/scan-io-git/lintfix/internal/diff"
	lferrors "github.com/scan-io-git/lintfix/internal/errors"
	"github.com/scan-io-git/lintfix/internal/issues"
)

// Requester proposes a fixed body for one file.
type Requester interface {
	RequestFix(ctx context.Context, req issues.FixRequest) (issues.FixResponse, error)
}

// Options configure a Fixer.
type Options struct {
	Root              string
	ConcurrentJobs    int
	RequestsPerMinute int
	ShowDiff          bool
	DiffOutput        io.Writer
}

// Fixer drives the read, request and overwrite cycle for every file of an issue group.
type Fixer struct {
	requester      Requester
	root           string
	concurrentJobs int
	limiter        *rate.Limiter
	showDiff       bool
	diffOut        io.Writer
	diffMu         sync.Mutex
	logger         hclog.Logger
}

// New creates a Fixer.
func New(requester Requester, opts Options, logger hclog.Logger) *Fixer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.ConcurrentJobs < 1 {
		opts.ConcurrentJobs = config.DefaultConcurrentJobs
	}
	if opts.DiffOutput == nil {
		opts.DiffOutput = os.Stdout
	}

	f := &Fixer{
		requester:      requester,
		root:           opts.Root,
		concurrentJobs: opts.ConcurrentJobs,
		showDiff:       opts.ShowDiff,
		diffOut:        opts.DiffOutput,
		logger:         logger,
	}
	if opts.RequestsPerMinute > 0 {
		f.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	return f
}

// NewFromConfig creates a Fixer from the fixer and llm sections of cfg.
func NewFromConfig(requester Requester, root string, cfg *config.Config, logger hclog.Logger) *Fixer {
	return New(requester, Options{
		Root:              root,
		ConcurrentJobs:    cfg.Fixer.ConcurrentJobs,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
		ShowDiff:          cfg.Fixer.ShowDiff,
	}, logger)
}

// WithDiffOutput sets where diffs are written when ShowDiff is on. A nil w keeps the current output.
func (f *Fixer) WithDiffOutput(w io.Writer) *Fixer {
	if w != nil {
		f.diffOut = w
	}
	return f
}

type indexedResult struct {
	index  int
	result FileResult
}

// FixAll processes every file of group concurrently and returns the run report.
// Each file ends in exactly one terminal state; a failure never affects other files.
func (f *Fixer) FixAll(ctx context.Context, group *issues.FileIssueGroup) *Report {
	paths := group.Files()
	report := &Report{
		RunID:       uuid.New().String(),
		Root:        f.root,
		StartedAt:   time.Now(),
		TotalIssues: group.TotalIssues(),
	}
	f.logger.Info("fix starting", "runID", report.RunID, "files", len(paths), "issues", report.TotalIssues, "goroutines", f.concurrentJobs)

	applier := NewApplier(f.root, group, f.logger.Named("applier"))
	resultsChannel := make(chan indexedResult, len(paths))

	var g errgroup.Group
	g.SetLimit(f.concurrentJobs)
	for i, path := range paths {
		list := group.Issues(path)
		g.Go(func() error {
			f.logger.Debug("goroutine started", "#", i+1, "path", path)
			resultsChannel <- indexedResult{index: i, result: f.fixFile(ctx, applier, path, list)}
			return nil
		})
	}
	_ = g.Wait()
	close(resultsChannel)

	report.Files = make([]FileResult, len(paths))
	for r := range resultsChannel {
		report.Files[r.index] = r.result
	}
	report.FinishedAt = time.Now()

	f.logger.Info("fix finished", "runID", report.RunID, "fixed", report.Fixed(), "failed", report.Failed(), "elapsed", report.FinishedAt.Sub(report.StartedAt).String())
	return report
}

// fixFile runs a single file through the state machine.
func (f *Fixer) fixFile(ctx context.Context, applier *Applier, path string, list []issues.Issue) FileResult {
	state := newFileState(path)
	result := FileResult{Path: path, Issues: len(list)}

	content, err := os.ReadFile(path)
	if err != nil {
		return f.fail(state, result, &lferrors.FileReadError{Path: path, Err: err})
	}

	if err := state.moveTo(StateRequested); err != nil {
		return f.fail(state, result, err)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return f.fail(state, result, &lferrors.ApiError{Path: path, Err: fmt.Errorf("waiting for rate limiter: %w", err)})
		}
	}

	original := string(content)
	resp, err := f.requester.RequestFix(ctx, issues.FixRequest{FilePath: path, OriginalContents: original, Issues: list})
	if err != nil {
		if lferrors.KindOf(err) == lferrors.KindUnknown {
			err = &lferrors.ApiError{Path: path, Err: err}
		}
		return f.fail(state, result, err)
	}
	if resp.FilePath != path {
		return f.fail(state, result, &lferrors.ApiError{Path: path, Err: fmt.Errorf("response is for %q", resp.FilePath)})
	}

	if f.showDiff {
		f.writeDiff(path, original, resp.NewContents)
	}

	if err := applier.Apply(resp); err != nil {
		return f.fail(state, result, err)
	}

	if err := state.moveTo(StateFixed); err != nil {
		return f.fail(state, result, err)
	}
	result.Status = StateFixed
	f.logger.Info("file fixed", "path", path, "issues", len(list))
	return result
}

func (f *Fixer) fail(state *fileState, result FileResult, err error) FileResult {
	// a transition error only happens for a file already in a terminal state
	_ = state.moveTo(StateFailed)
	result.Status = StateFailed
	result.ErrorKind = string(lferrors.KindOf(err))
	result.Message = err.Error()
	f.logger.Warn("file not fixed", "path", result.Path, "kind", result.ErrorKind, "error", err)
	return result
}

func (f *Fixer) writeDiff(path, before, after string) {
	f.diffMu.Lock()
	defer f.diffMu.Unlock()
	if _, err := diff.Write(f.diffOut, path, before, after); err != nil {
		f.logger.Warn("failed to write diff", "path", path, "error", err)
	}
}
