// Package whisper wraps the external speech-to-text process and the ffmpeg
// audio extraction that feeds it.
//
// Transcribe runs insanely-fast-whisper (or a configured compatible command)
// with --file-name, --device-id, --model-name and --transcript-path, bounded by
// a timeout, and reports failures as *TranscriptionError carrying the exit
// code and stderr. ExtractAudio produces mono 16kHz PCM WAV from a video
// container. Tests swap the process runner with WithCommandRunner.
package whisper
