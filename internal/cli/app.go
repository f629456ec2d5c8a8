package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ishaan812/farmer/internal/config"
	"github.com/ishaan812/farmer/internal/db"
	"github.com/ishaan812/farmer/internal/deepanalysis"
	"github.com/ishaan812/farmer/internal/git"
	"github.com/ishaan812/farmer/internal/llm"
	"github.com/ishaan812/farmer/internal/logger"
	"github.com/ishaan812/farmer/internal/summarizer"
	"github.com/ishaan812/farmer/internal/worklog"
)

// app bundles the services a command needs.
type app struct {
	store      *config.FileStore
	settings   *config.Settings
	log        logger.Logger
	backend    *git.LocalBackend
	aggregator *worklog.Aggregator
}

func loadApp(opts ...git.LocalOption) (*app, error) {
	log := logger.Default(IsVerbose())
	store := settingsStore()

	settings, err := store.Load()
	if err != nil {
		if settings == nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		VerboseLog("Warning: settings file is invalid, using defaults: %v", err)
	}

	backend := git.NewLocalBackend(log, opts...)
	return &app{
		store:      store,
		settings:   settings,
		log:        log,
		backend:    backend,
		aggregator: worklog.NewAggregator(backend, log),
	}, nil
}

func (a *app) save() error {
	return a.store.Save(a.settings)
}

func (a *app) aggregateOptions() worklog.Options {
	return worklog.Options{
		Repos:           a.settings.Repos(),
		FilterByAuthors: a.settings.FilterByGitAuthors,
		Authors:         a.settings.WorkSchedule.GitAuthors,
	}
}

func (a *app) aggregate(ctx context.Context) (*worklog.Result, error) {
	opts := a.aggregateOptions()
	if len(opts.Repos) == 0 {
		return nil, fmt.Errorf("no repositories selected\n\nRun 'farmer repos add <path>' first")
	}
	return a.aggregator.Aggregate(ctx, opts)
}

// timeline aggregates and keeps only the days inside the range given by the shared range flags.
func (a *app) timeline(ctx context.Context, rf rangeFlags) ([]git.WorkDay, worklog.DateRange, *worklog.Result, error) {
	r, err := rf.parse(time.Now())
	if err != nil {
		return nil, r, nil, err
	}
	res, err := a.aggregate(ctx)
	if err != nil {
		return nil, r, nil, err
	}
	return worklog.FilterDays(res.Days, r), r, res, nil
}

func (a *app) pipeline() *summarizer.Pipeline {
	dispatcher := llm.NewDispatcher(a.log)
	fetcher := deepanalysis.NewFetcher(a.backend, a.log)
	return summarizer.New(dispatcher, fetcher, a.log)
}

func (a *app) request(commits []git.Commit) summarizer.Request {
	return summarizer.Request{
		Commits:      commits,
		AI:           a.settings.AIConfig,
		DeepAnalysis: a.settings.DeepAnalysisSettings,
	}
}

func (a *app) summaries() (*db.SummaryStore, error) {
	st, err := db.OpenSummaryStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open summary database: %w", err)
	}
	return st, nil
}

// record stores a finished summary for day.
func (a *app) record(st *db.SummaryStore, day git.WorkDay, text string) error {
	s := &db.Summary{
		Date:         day.Date,
		Signature:    db.Signature(day.Commits),
		Verbosity:    string(a.settings.AIConfig.Verbosity),
		CommitCount:  day.TotalCommits,
		Summary:      text,
		DeepAnalysis: a.settings.DeepAnalysisSettings.Enabled,
	}
	if p, err := a.settings.AIConfig.Selected(); err == nil {
		s.ProviderID = p.ID
		s.ProviderName = p.Name
	}
	return st.Save(s)
}

func (a *app) author() string {
	if len(a.settings.WorkSchedule.GitAuthors) > 0 {
		return a.settings.WorkSchedule.GitAuthors[0]
	}
	return ""
}
