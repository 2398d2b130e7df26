// Package constpool provides an in-memory constant pool in class-file
// layout. Builder interns strings, descriptors and numeric constants while
// annotations are encoded; the resulting Pool serves lookups during
// extraction. Indexes are 1-based and long or double constants take two
// slots, matching the format's pool addressing.
package constpool
