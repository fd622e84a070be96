// Package viz draws the gas for terminal output.
//
//   - [Canvas]: braille pixel canvas with a world-to-canvas projection for
//     the enclosure
//   - [Styles]: lipgloss styles derived from a [Theme]
//   - [HistogramBars] and [Sparkline]: text charts for the speed
//     distribution and temperature history
package viz
