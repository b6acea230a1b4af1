// Package babel is an engine for a Library of Babel:
// a virtual library holding every possible page
// (or every possible book)
// of a fixed length over a fixed alphabet.
//
// The library is never stored.
// Each location in it,
// written as an identifier ROOM.WALL.SHELF.BOOK.PAGE,
// maps to a number,
// and that number maps to content through a bijective permutation of [0,N),
// where N is the number of distinct blocks of content.
// The permutation is multiplication by a constant C modulo N,
// so it is cheap to evaluate in both directions:
// the inverse multiplies by I, the modular inverse of C.
// Going from location to content is “browsing”;
// going from content back to its location is “searching.”
//
// Because N = k^L for an alphabet of k symbols and blocks of L symbols,
// all the arithmetic is on integers of thousands (or millions) of digits.
// The bignum subpackage provides the sub-quadratic conversions
// and the fast modular multiplication that this requires.
//
// Rooms are the only unbounded coordinate,
// and a room number can be thousands of characters long.
// The bookmark subpackage maps rooms to short fixed-length handles
// (the SHA2-256 hash of the room),
// stored in any of the stores under the store subpackage.
//
// An Engine is immutable once constructed and safe for concurrent use.
// Randomness is always supplied by the caller.
package babel
