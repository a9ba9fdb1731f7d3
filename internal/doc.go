// Package internal contains the implementation packages of stegtext.
//
// # Package Organization
//
// The codecs share one byte-stream contract and know nothing of each other:
//
//   - bitstream: MSB-first bit packing shared by every codec
//   - zerowidth: invisible marks framed by delimiters after the first rune
//   - morse: generated prose whose word lengths spell Morse code
//   - homoglyph: Latin letters swapped for Cyrillic look-alikes
//   - analyzer: statistics and the four-signal detector
//   - crypto: password based sealing of secrets before embedding
//
// Around them sit the application layers:
//
//   - services: the hide/extract/analyze pipeline, directory scans,
//     project initialisation and the server lifecycle
//   - server: HTTP API and the WebSocket analysis stream
//   - wordlist and watcher: loadable morse vocabularies with hot reload
//   - htmltext: visible text of HTML documents
//   - config, logging, errors, version: the ambient stack
//
// Payload contents never reach a log line; only sizes, methods and counts do.
package internal
