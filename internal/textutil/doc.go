// Package textutil provides the filename and title analysis used by the
// tie-break cascade.
//
// The primary use cases are:
//   - Extracting file name stems and lowercase extensions from library paths
//   - Detecting trailing numeric suffixes that mark copy artifacts
//     ("track.mp3" vs "track 1.mp3")
//   - Scoring how well a file name matches the track's tag metadata via
//     Jaro-Winkler similarity
package textutil
