// Package extract splits source files into ordered recognizable units:
// one standalone page per unit for PDF documents, one fixed-length
// ffmpeg-cut segment per unit for audio recordings.
package extract
