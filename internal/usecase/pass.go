// Package usecase drives one synchronization pass per pipeline:
// articles from WordPress sources, videos from YouTube channels and
// kajian announcements from Instagram accounts.
package usecase

import (
	"log/slog"

	"github.com/google/uuid"
)

// Stage names the phases a pass moves through.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageFetching    Stage = "fetching"
	StageReconciling Stage = "reconciling"
	StagePersisting  Stage = "persisting"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// pass tracks one in-flight run for log correlation. A pass is owned by
// its pipeline for the duration of the run and never persisted.
type pass struct {
	id       string
	pipeline string
	stage    Stage
	logger   *slog.Logger
}

func newPass(pipeline string, logger *slog.Logger) *pass {
	p := &pass{
		id:       uuid.NewString(),
		pipeline: pipeline,
		stage:    StageIdle,
		logger:   logger,
	}
	p.log("pass started")
	return p
}

func (p *pass) enter(stage Stage) {
	p.stage = stage
	p.log("pass stage")
}

// fail marks the pass failed and returns err unchanged so call sites
// stay single-line.
func (p *pass) fail(err error) error {
	p.stage = StageFailed
	if p.logger != nil {
		p.logger.Error("pass failed", "pass_id", p.id, "pipeline", p.pipeline, "error", err)
	}
	return err
}

func (p *pass) done() {
	p.enter(StageDone)
}

func (p *pass) log(msg string) {
	if p.logger != nil {
		p.logger.Info(msg, "pass_id", p.id, "pipeline", p.pipeline, "stage", string(p.stage))
	}
}
