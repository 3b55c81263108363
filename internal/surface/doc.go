// Package surface provides drawing targets for a particle field.
//
//   - [Canvas]: braille terminal canvas with per-cell alpha
//   - [Raster]: software pixel raster for PNG and GIF output
//   - [SVG]: vector recording of the last frame
//
// All three satisfy field.Surface and anim.Resizer.
package surface
