// Package records decodes and encodes the typed records stored in a ROM
// image.
//
// Every record family is described by one row of a static layout table (a
// [Descriptor]): its home offset, slot stride, element count and decoder.
// Fixed-stride kinds support random access through [Decode] and [Encode];
// variable-length kinds (narrow string tables, encounter regions) are walked
// with [Scan], which advances by each decoded record's Size.
//
// All records are views over the caller's buffer: decoding copies the slot
// into a Go value, and Encode writes the value back over the same slot. No
// Encode ever writes past the bytes its record occupied when decoded.
//
// Battle Network 2 tables without a recovered layout (shops, folders, drop
// tables and the GMD reward locations) use the layouts documented on
// [ShopEntry], [FolderSlot], [DropEntry] and [GMDSchema].
package records
