// Package viz renders diffusion profiles for the terminal and for files.
//
//   - [PlotProfiles]: initial and final concentration on one asciigraph chart
//   - [ProfileSVG]: the same curves as a standalone SVG document
//   - [Summary]: a lipgloss panel with run parameters and metrics
package viz
