// Package imaging provides the image-side helpers of the density server:
// decoding annotated frames to learn their dimensions, and rendering density
// maps back into viewable images.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward. A density map built for
// an image has the image's height as its row count and width as its column
// count.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Rendering functions are
// stateless and can be called concurrently on different maps.
//
// # Orientation
//
// Frames are decoded with EXIF auto-orientation, so dimensions match what an
// annotator saw on screen. Clicks recorded against the displayed frame then
// line up with the density map's rows and columns.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors during image loading
//   - Undecodable image data
//   - Encoding errors during image output
package imaging
