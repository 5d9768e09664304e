// Package audiofx implements the real-time audio effects pipeline: circular
// sample buffers shared between device callbacks and the monitoring loop,
// named processing chains of dsp effects, the pipeline that blends chain
// outputs and tracks per-block processing time, and the processor that binds
// the whole thing to a capture/playback device.
//
// Two execution contexts touch this package: the audio-hardware callback,
// which must never block or log, and the monitoring loop, which performs all
// DSP work. The only synchronization between them is the per-buffer mutex,
// held just for the duration of a copy.
package audiofx
