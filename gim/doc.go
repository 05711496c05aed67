// Package gim decodes GIM texture images, the tiled/paletted picture
// format used by the producer's PSP titles, into flat RGBA rasters.
//
// A GIM file is a 16-byte header ("MIG.00.1PSP") followed by a tree of
// chunks; the picture chunk carries an image chunk and, for palette-indexed
// formats, a palette chunk. Pixel data may be stored linearly or in the
// PSP's block-swizzled arrangement of 16-byte by 8-row tiles.
//
// Decoding is all-or-nothing: [Decode] either returns a complete raster of
// exactly width*height*4 bytes or an error. Unsupported pixel-format tags
// fail fast rather than guessing.
package gim
