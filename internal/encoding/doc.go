// Package encoding turns a media job into an ffmpeg invocation and runs it.
//
// Profiles describe the codec, container, and hardware choices for one output
// kind. The Builder assembles arguments into fixed slots (global options,
// hardware acceleration, inputs, stream maps, video filter, video codec, audio
// filter, audio codec, container, output) so filters always precede the codec
// they feed. The Runner executes the command, streams stderr through a
// progress monitor, and reports non-zero exits as encode failures carrying the
// transcoder's diagnostic output.
package encoding
