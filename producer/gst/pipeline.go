// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gst

import (
	"fmt"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// pipelineConfig describes the decode pipeline to build.
type pipelineConfig struct {
	URI       string
	Width     int
	Height    int
	TargetFPS float64
}

// pipelineElements holds references to the pipeline and the elements
// needed for dynamic-pad linking and cleanup.
type pipelineElements struct {
	Pipeline  *gst.Pipeline
	AppSink   *app.Sink
	Converter *gst.Element
}

// buildPipeline creates and links the decode pipeline:
//
//	uridecodebin → videoconvert → videoscale → videorate →
//	capsfilter(RGBA,WxH[,fps]) → appsink
//
// uridecodebin has dynamic pads, linked to videoconvert in the
// pad-added callback once decoding starts. The pipeline is configured
// but not started; the caller sets it to PLAYING.
func buildPipeline(cfg pipelineConfig) (*pipelineElements, error) {
	// Safe to call multiple times.
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	decode, err := gst.NewElement("uridecodebin")
	if err != nil {
		return nil, fmt.Errorf("create uridecodebin: %w", err)
	}
	decode.SetProperty("uri", cfg.URI)

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("create videoconvert: %w", err)
	}
	converter.SetProperty("n-threads", 0) // auto-detect cores

	scaler, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, fmt.Errorf("create videoscale: %w", err)
	}

	videorate, err := gst.NewElement("videorate")
	if err != nil {
		return nil, fmt.Errorf("create videorate: %w", err)
	}
	videorate.SetProperty("drop-only", true)
	videorate.SetProperty("skip-to-first", true)

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("create capsfilter: %w", err)
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString(buildCaps(cfg)))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("create appsink: %w", err)
	}
	// The latest frame is the only one worth keeping; presentation
	// pacing stays with the pipeline clock.
	appsink.SetProperty("sync", true)
	appsink.SetProperty("max-buffers", 1)
	appsink.SetProperty("drop", true)
	appsink.SetProperty("qos", true)

	pipeline.AddMany(
		decode,
		converter,
		scaler,
		videorate,
		capsfilter,
		appsink.Element,
	)

	// Static links; the decode→converter link happens in pad-added.
	if err := gst.ElementLinkMany(
		converter,
		scaler,
		videorate,
		capsfilter,
		appsink.Element,
	); err != nil {
		return nil, fmt.Errorf("link pipeline elements: %w", err)
	}

	// uridecodebin exposes its source pads only after the stream type
	// is known.
	decode.Connect("pad-added", func(src *gst.Element, srcPad *gst.Pad) {
		sinkPad := converter.GetStaticPad("sink")
		if sinkPad == nil {
			slogger().Error("gst: failed to get videoconvert sink pad")
			return
		}
		if sinkPad.IsLinked() {
			// Audio pad or a second video stream; ignore.
			return
		}
		if ret := srcPad.Link(sinkPad); ret != gst.PadLinkOK {
			slogger().Error("gst: failed to link decode pad",
				"pad", srcPad.GetName(), "ret", ret)
			return
		}
		slogger().Debug("gst: decode pad linked", "pad", srcPad.GetName())
	})

	return &pipelineElements{
		Pipeline:  pipeline,
		AppSink:   appsink,
		Converter: converter,
	}, nil
}

// destroyPipeline stops the pipeline and releases its resources. Safe
// to call on an already-stopped pipeline.
func destroyPipeline(elements *pipelineElements) error {
	if elements == nil || elements.Pipeline == nil {
		return nil
	}
	if err := elements.Pipeline.SetState(gst.StateNull); err != nil {
		return fmt.Errorf("set pipeline to NULL: %w", err)
	}
	return nil
}

// buildCaps builds the appsink caps string: RGBA at the target size,
// with a framerate constraint when TargetFPS is set.
//
// Fractional rates map to 1/N: 0.5 fps → framerate=1/2.
func buildCaps(cfg pipelineConfig) string {
	base := fmt.Sprintf("video/x-raw,format=RGBA,width=%d,height=%d", cfg.Width, cfg.Height)
	if cfg.TargetFPS <= 0 {
		return base
	}
	numerator, denominator := 1, 1
	if cfg.TargetFPS < 1.0 {
		denominator = int(1.0 / cfg.TargetFPS)
	} else {
		numerator = int(cfg.TargetFPS)
	}
	return fmt.Sprintf("%s,framerate=%d/%d", base, numerator, denominator)
}
