// Package pipeline sequences the content-generation stages (news → script
// → voice → video → upload) and binds pooled credentials to the stages that
// call keyed upstream APIs. Stage implementations are external
// collaborators injected by the caller; this package only orchestrates.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/KAFKA2306/2510youtuber-sub001/pkg/metrics"
	"github.com/KAFKA2306/2510youtuber-sub001/pkg/rotation"
)

// NewsSource finds candidate stories for a topic. Implementations call a
// keyed search API with the supplied credential.
type NewsSource interface {
	Fetch(ctx context.Context, credential, topic string) ([]Story, error)
}

// ScriptWriter turns a story into a narration script via a keyed LLM call.
type ScriptWriter interface {
	Write(ctx context.Context, credential string, story Story) (Script, error)
}

// VoiceSynthesizer renders narration audio and returns the audio file path.
type VoiceSynthesizer interface {
	Synthesize(ctx context.Context, script Script) (string, error)
}

// VideoComposer renders the final video and returns the video file path.
type VideoComposer interface {
	Compose(ctx context.Context, script Script, audioPath string) (string, error)
}

// Uploader publishes the finished video.
type Uploader interface {
	Upload(ctx context.Context, script Script, videoPath string) (UploadResult, error)
}

// Config names the providers the keyed stages draw credentials from.
type Config struct {
	SearchProvider string // provider registered for NewsSource calls
	LLMProvider    string // provider registered for ScriptWriter calls
	MaxAttempts    int    // per keyed call; <= 0 uses the pool size
	Logger         *logrus.Logger
}

// Stages bundles the injected stage implementations.
type Stages struct {
	News     NewsSource
	Writer   ScriptWriter
	Voice    VoiceSynthesizer
	Video    VideoComposer
	Uploader Uploader
}

// Runner executes one content-generation job end to end.
type Runner struct {
	rot    *rotation.Manager
	stages Stages
	cfg    Config
	log    *logrus.Logger
}

// NewRunner wires the stages to the rotation manager.
func NewRunner(rot *rotation.Manager, stages Stages, cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Runner{rot: rot, stages: stages, cfg: cfg, log: cfg.Logger}
}

// Run produces and publishes one video for topic. Keyed stages go through
// the rotation manager, so a single bad credential does not fail the job.
func (r *Runner) Run(ctx context.Context, topic string) (UploadResult, error) {
	jobID := uuid.NewString()
	log := r.log.WithFields(logrus.Fields{"job": jobID, "topic": topic})
	log.Info("pipeline run started")

	res, err := r.run(ctx, log, topic)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		log.WithError(err).Error("pipeline run failed")
		return UploadResult{}, err
	}
	metrics.PipelineRunsTotal.WithLabelValues("success").Inc()
	log.WithField("video_id", res.VideoID).Info("pipeline run complete")
	return res, nil
}

func (r *Runner) run(ctx context.Context, log *logrus.Entry, topic string) (UploadResult, error) {
	var stories []Story
	err := r.timed("news", func() error {
		return r.rot.Execute(ctx, r.cfg.SearchProvider, r.cfg.MaxAttempts, func(ctx context.Context, credential string) error {
			var ferr error
			stories, ferr = r.stages.News.Fetch(ctx, credential, topic)
			return ferr
		})
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("pipeline: fetch news: %w", err)
	}
	if len(stories) == 0 {
		return UploadResult{}, fmt.Errorf("pipeline: no stories for topic %q", topic)
	}
	story := stories[0]
	log.WithField("story", story.Title).Info("story selected")

	var script Script
	err = r.timed("script", func() error {
		return r.rot.Execute(ctx, r.cfg.LLMProvider, r.cfg.MaxAttempts, func(ctx context.Context, credential string) error {
			var werr error
			script, werr = r.stages.Writer.Write(ctx, credential, story)
			return werr
		})
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("pipeline: write script: %w", err)
	}
	log.WithField("lines", len(script.Lines)).Info("script ready")

	var audioPath string
	err = r.timed("voice", func() error {
		var serr error
		audioPath, serr = r.stages.Voice.Synthesize(ctx, script)
		return serr
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("pipeline: synthesize voice: %w", err)
	}

	var videoPath string
	err = r.timed("video", func() error {
		var cerr error
		videoPath, cerr = r.stages.Video.Compose(ctx, script, audioPath)
		return cerr
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("pipeline: compose video: %w", err)
	}

	var res UploadResult
	err = r.timed("upload", func() error {
		var uerr error
		res, uerr = r.stages.Uploader.Upload(ctx, script, videoPath)
		return uerr
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("pipeline: upload: %w", err)
	}
	return res, nil
}

// timed observes one stage's latency.
func (r *Runner) timed(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.PipelineStageSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return err
}
